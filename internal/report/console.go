package report

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"
)

// DefaultTimestampFormat matches SPEC_FULL.md §6's default
// report.timestamp_format.
const DefaultTimestampFormat = "%Y-%m-%d %H:%M:%S"

// Summary renders the console summary (spec.md §4.H: "TOTAL=n OK=k
// FAIL=m, start/stop timestamps, duration in seconds"), colorized with
// fatih/color when w is a terminal (mattn/go-isatty), plain otherwise.
// Total captured bytes are rendered with dustin/go-humanize; timestamps
// with ncruces/go-strftime under the configured format.
func (r *Report) Summary(w io.Writer, timestampFormat string) string {
	if timestampFormat == "" {
		timestampFormat = DefaultTimestampFormat
	}

	total := r.Total()
	ok := r.OKCount()
	fail := r.FailCount()

	okStr := fmt.Sprintf("OK=%d", ok)
	failStr := fmt.Sprintf("FAIL=%d", fail)
	if isTerminal(w) {
		okStr = color.GreenString(okStr)
		if fail > 0 {
			failStr = color.RedString(failStr)
		}
	}

	startStr := strftime.Format(timestampFormat, r.startWall)
	stopStr := strftime.Format(timestampFormat, r.stopWall)

	return fmt.Sprintf(
		"TOTAL=%d %s %s\nstart=%s stop=%s duration=%.3fs captured=%s\n",
		total, okStr, failStr, startStr, stopStr, r.Duration().Seconds(), humanize.Bytes(r.TotalBytes()),
	)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
