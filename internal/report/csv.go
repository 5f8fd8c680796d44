package report

import (
	"encoding/csv"
	"fmt"
	"os"
)

// failKey groups failures for the printed summary (spec.md §4.H:
// "grouped summary printed by (os_name, reason)").
type failKey struct {
	osName string
	reason string
}

// WriteFailuresCSV writes failures.csv: host,os_name,reason, sorted by
// host, followed by a blank line, a (os_name,reason) grouped summary, and
// a TOTAL row.
func (r *Report) WriteFailuresCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"host", "os_name", "reason"}); err != nil {
		return err
	}

	entries := r.sortedFail()
	counts := map[failKey]int{}
	for _, e := range entries {
		if err := w.Write([]string{e.Host, e.OSName, e.Reason}); err != nil {
			return err
		}
		counts[failKey{osName: e.OSName, reason: e.Reason}]++
	}

	if err := w.Write(nil); err != nil {
		return err
	}
	if err := w.Write([]string{"os_name", "reason", "count"}); err != nil {
		return err
	}
	total := 0
	for k, n := range counts {
		if err := w.Write([]string{k.osName, k.reason, fmt.Sprint(n)}); err != nil {
			return err
		}
		total += n
	}
	return w.Write([]string{"TOTAL", "", fmt.Sprint(total)})
}

// loginKey groups login attempts for the printed summary (spec.md §4.H:
// "summary by (os_name, login_used) counting attempts").
type loginKey struct {
	osName    string
	loginUsed string
}

// WriteLoginCSV writes login.csv (login command only):
// host,os_name,num_of_attempts,login_used, sorted by host, followed by a
// (os_name,login_used) grouped attempt-count summary.
func (r *Report) WriteLoginCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"host", "os_name", "num_of_attempts", "login_used"}); err != nil {
		return err
	}

	entries := r.sortedLogins()
	counts := map[loginKey]int{}
	for _, e := range entries {
		if err := w.Write([]string{e.Host, e.OSName, fmt.Sprint(e.NumAttempts), e.LoginUsed}); err != nil {
			return err
		}
		counts[loginKey{osName: e.OSName, loginUsed: e.LoginUsed}] += e.NumAttempts
	}

	if err := w.Write(nil); err != nil {
		return err
	}
	if err := w.Write([]string{"os_name", "login_used", "total_attempts"}); err != nil {
		return err
	}
	for k, n := range counts {
		if err := w.Write([]string{k.osName, k.loginUsed, fmt.Sprint(n)}); err != nil {
			return err
		}
	}
	return nil
}
