// Package linter trims a captured running-config between configured
// markers (spec.md §4.F).
package linter

import (
	"regexp"
	"strings"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
)

// Lint applies spec's {config_starts_after, config_ends_at} markers to the
// full captured text and returns the trimmed body. It is idempotent:
// Lint(Lint(x, spec), spec) == Lint(x, spec) (spec.md §8).
func Lint(content string, spec config.LinterSpec) string {
	start := 0
	if spec.ConfigStartsAfter != "" {
		re, err := regexp.Compile("(?m)^" + spec.ConfigStartsAfter + ".*$")
		if err == nil {
			if loc := re.FindStringIndex(content); loc != nil {
				start = loc[1] + 1
				if start > len(content) {
					start = len(content)
				}
			}
		}
	}

	end := len(content)
	if spec.ConfigEndsAt != "" {
		needle := "\n" + spec.ConfigEndsAt
		// idx is the position of the newline that precedes the marker line;
		// the slice end sits just past that newline, so the trailing
		// newline of the preserved body is kept and only the marker line
		// itself is dropped.
		if idx := strings.LastIndex(content, needle); idx > 0 {
			end = idx + 1
		}
	}

	if start > end {
		start = end
	}
	return content[start:end]
}
