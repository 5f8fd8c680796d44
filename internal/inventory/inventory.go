// Package inventory loads the device inventory CSV and applies the
// include/exclude filters built by internal/filtering (spec.md §3 and §6).
package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Host is a single inventory record: a field-name to value mapping. Field
// set is inventory-defined; the core requires at least "host" and consumes
// "ipaddr", "os_name", "username", "password" when present.
type Host map[string]string

// Name returns the record's ipaddr if present, else its host field — the
// value used as the connection target throughout internal/sshsession.
func (h Host) Name() string {
	if v := h["ipaddr"]; v != "" {
		return v
	}
	return h["host"]
}

// Load reads the inventory CSV at path. Rows whose first column begins with
// "#" are comments and are skipped (filetypes.py's CommentedCsvReader). The
// header row is required and must include a "host" column.
func Load(path string) ([]Host, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("inventory file does not exist: %s", path)
		}
		return nil, nil, fmt.Errorf("open inventory %s: %w", path, err)
	}
	defer f.Close()

	return parse(f)
}

func parse(r io.Reader) ([]Host, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("inventory file has no header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read inventory header: %w", err)
	}

	hasHost := false
	for _, h := range header {
		if h == "host" {
			hasHost = true
			break
		}
	}
	if !hasHost {
		return nil, nil, fmt.Errorf("inventory file missing required column %q", "host")
	}

	var hosts []Host
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read inventory row: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		if strings.HasPrefix(row[0], "#") {
			continue
		}

		rec := make(Host, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		hosts = append(hosts, rec)
	}

	return hosts, header, nil
}
