// Package filtering implements the include/exclude constraint grammar used
// to build an inventory predicate (spec.md §4.A). It is intentionally
// generic over any CSV-shaped record, mirroring the teacher's pattern of
// keeping a standalone constraint parser independent of inventory-specific
// field names (filtering.py is documented the same way in the original).
package filtering

import (
	"encoding/csv"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Record is anything a constraint can be tested against.
type Record map[string]string

// constraint is a single parsed "<field>=<value>" or "@file" expression.
type constraint interface {
	Match(rec Record) bool
	String() string
}

type regexConstraint struct {
	field string
	expr  string
	re    *regexp.Regexp
}

func (c *regexConstraint) Match(rec Record) bool {
	return c.re.MatchString(rec[c.field])
}

func (c *regexConstraint) String() string {
	return fmt.Sprintf("RegexFilter(field=%s, expr=%s)", c.field, c.expr)
}

type ipConstraint struct {
	field   string
	prefix  netip.Prefix
	display string
}

func (c *ipConstraint) Match(rec Record) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(rec[c.field]))
	if err != nil {
		return false
	}
	return c.prefix.Contains(addr)
}

func (c *ipConstraint) String() string {
	return fmt.Sprintf("IPFilter(field=%s, ip=%s)", c.field, c.display)
}

type fileConstraint struct {
	path      string
	hostnames map[string]bool
}

func (c *fileConstraint) Match(rec Record) bool {
	return c.hostnames[rec["host"]]
}

func (c *fileConstraint) String() string {
	return fmt.Sprintf("FileFilter(path=%s)", c.path)
}

// Mode selects include or exclude composition semantics (spec.md §4.A).
type Mode int

const (
	// Include keeps a record only when every constraint matches.
	Include Mode = iota
	// Exclude keeps a record when no constraint matches.
	Exclude
)

// Filter is a compiled predicate over inventory records, carrying its
// parsed constraints for debug printing (spec.md §9, "Constraint parser").
type Filter struct {
	Mode        Mode
	Constraints []constraint
	rawExprs    []string
}

// String renders the filter's constraints for debug output.
func (f *Filter) String() string {
	parts := make([]string, len(f.Constraints))
	for i, c := range f.Constraints {
		parts[i] = c.String()
	}
	return fmt.Sprintf("Filter(mode=%v, constraints=[%s])", f.Mode, strings.Join(parts, ", "))
}

// Match applies the filter to rec. The observable law (spec.md §4.A,
// matching original_source/netcfgbu/filtering.py's create_filter): with
// mode=Include the record is kept iff every constraint matches (an empty
// constraint list vacuously keeps everything); with mode=Exclude the
// record is kept iff no constraint matches.
func (f *Filter) Match(rec Record) bool {
	if f.Mode == Include {
		for _, c := range f.Constraints {
			if !c.Match(rec) {
				return false
			}
		}
		return true
	}

	for _, c := range f.Constraints {
		if c.Match(rec) {
			return false
		}
	}
	return true
}

var fileRefRe = regexp.MustCompile(`^@(.+)$`)

// Build compiles a list of "<field>=<value>" / "@<path>" constraint
// expressions against the given field names into a Filter. fieldNames must
// list every keyword a "<field>=<value>" constraint is allowed to name.
func Build(constraints []string, fieldNames []string, mode Mode) (*Filter, error) {
	f := &Filter{Mode: mode, rawExprs: constraints}

	for _, expr := range constraints {
		c, err := parseConstraint(expr, fieldNames)
		if err != nil {
			return nil, err
		}
		f.Constraints = append(f.Constraints, c)
	}

	return f, nil
}

func parseConstraint(expr string, fieldNames []string) (constraint, error) {
	if m := fileRefRe.FindStringSubmatch(expr); m != nil {
		return parseFileConstraint(m[1])
	}

	field, value, ok := splitFieldValue(expr, fieldNames)
	if !ok {
		return nil, fmt.Errorf("Invalid filter expression: %s", expr)
	}

	if strings.EqualFold(field, "ipaddr") {
		if c, err := parseIPConstraint(field, value); err == nil {
			return c, nil
		}
	}

	return parseRegexConstraint(field, value)
}

// splitFieldValue matches "<field>=<value>" where field is one of
// fieldNames (case-sensitive keyword match per spec.md §4.A).
func splitFieldValue(expr string, fieldNames []string) (field, value string, ok bool) {
	idx := strings.Index(expr, "=")
	if idx < 0 {
		return "", "", false
	}
	candidate := expr[:idx]
	for _, fn := range fieldNames {
		if fn == candidate {
			return candidate, expr[idx+1:], true
		}
	}
	return "", "", false
}

func parseIPConstraint(field, value string) (constraint, error) {
	value = strings.TrimSpace(value)
	if !strings.Contains(value, "/") {
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, err
		}
		bits := 32
		if addr.Is6() {
			bits = 128
		}
		prefix := netip.PrefixFrom(addr, bits)
		return &ipConstraint{field: field, prefix: prefix, display: value}, nil
	}
	prefix, err := netip.ParsePrefix(value)
	if err != nil {
		return nil, err
	}
	return &ipConstraint{field: field, prefix: prefix, display: value}, nil
}

func parseRegexConstraint(field, value string) (constraint, error) {
	re, err := regexp.Compile("(?i)^" + value + "$")
	if err != nil {
		return nil, fmt.Errorf("Invalid filter regular-expression: %s: %w", value, err)
	}
	return &regexConstraint{field: field, expr: value, re: re}, nil
}

func parseFileConstraint(path string) (constraint, error) {
	if filepath.Ext(path) != ".csv" {
		return nil, fmt.Errorf("file %q not a CSV file. Only CSV files are supported", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("file %q does not contain headers or is empty", path)
	}

	hostIdx := -1
	for i, h := range header {
		if h == "host" {
			hostIdx = i
			break
		}
	}
	if hostIdx < 0 {
		return nil, fmt.Errorf("file %q does not contain host content as expected", path)
	}

	hostnames := make(map[string]bool)
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		if hostIdx < len(row) && row[hostIdx] != "" {
			hostnames[row[hostIdx]] = true
		}
	}

	return &fileConstraint{path: path, hostnames: hostnames}, nil
}
