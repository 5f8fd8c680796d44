package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteFailuresCSV(t *testing.T) {
	r := New("backup")
	r.AddFail(inventory.Host{"host": "sw1", "os_name": "eos"}, "TimeoutError")
	r.AddFail(inventory.Host{"host": "sw2", "os_name": "eos"}, "TimeoutError")
	r.AddFail(inventory.Host{"host": "sw3", "os_name": "ios"}, "All credentials failed")

	path := filepath.Join(t.TempDir(), "failures.csv")
	if err := r.WriteFailuresCSV(path); err != nil {
		t.Fatalf("WriteFailuresCSV: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) == 0 || rows[0][0] != "host" {
		t.Fatalf("expected header row, got %v", rows)
	}
	if rows[len(rows)-1][0] != "TOTAL" || rows[len(rows)-1][2] != "3" {
		t.Errorf("expected TOTAL row with count 3, got %v", rows[len(rows)-1])
	}
}

func TestWriteFailuresCSVEmpty(t *testing.T) {
	r := New("backup")
	path := filepath.Join(t.TempDir(), "failures.csv")
	if err := r.WriteFailuresCSV(path); err != nil {
		t.Fatalf("WriteFailuresCSV: %v", err)
	}
	rows := readCSV(t, path)
	if rows[len(rows)-1][0] != "TOTAL" || rows[len(rows)-1][2] != "0" {
		t.Errorf("expected TOTAL row with count 0, got %v", rows[len(rows)-1])
	}
}

func TestWriteLoginCSV(t *testing.T) {
	r := New("login")
	r.AddLogin(inventory.Host{"host": "sw1", "os_name": "eos"}, 1, "admin")
	r.AddLogin(inventory.Host{"host": "sw2", "os_name": "eos"}, 3, "admin")

	path := filepath.Join(t.TempDir(), "login.csv")
	if err := r.WriteLoginCSV(path); err != nil {
		t.Fatalf("WriteLoginCSV: %v", err)
	}

	rows := readCSV(t, path)
	if rows[0][0] != "host" || rows[0][3] != "login_used" {
		t.Fatalf("unexpected header: %v", rows[0])
	}

	found := false
	for _, row := range rows {
		if row[0] == "eos" && row[1] == "admin" && row[2] == "4" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected grouped summary row eos/admin/4, rows=%v", rows)
	}
}
