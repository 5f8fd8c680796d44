package cli

import (
	"testing"

	"github.com/netcfgbu/netcfgbu-go/internal/filtering"
	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
)

func TestHistoryFileName(t *testing.T) {
	flagKeepHistory = false
	if got := historyFileName("failures.csv", "run-1"); got != "failures.csv" {
		t.Errorf("keep-history off: got %q, want unstamped name", got)
	}

	flagKeepHistory = true
	defer func() { flagKeepHistory = false }()
	if got, want := historyFileName("failures.csv", "run-1"), "failures-run-1.csv"; got != want {
		t.Errorf("keep-history on: got %q, want %q", got, want)
	}
}

func TestUnionFieldNames(t *testing.T) {
	got := unionFieldNames([]string{"host", "ipaddr"}, []string{"ipaddr", "os_name"})
	want := []string{"host", "ipaddr", "os_name"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestApplyFilter(t *testing.T) {
	hosts := []inventory.Host{
		{"host": "sw1", "os_name": "eos"},
		{"host": "sw2", "os_name": "ios"},
	}
	f, err := filtering.Build([]string{"os_name=eos"}, []string{"host", "os_name"}, filtering.Include)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got := applyFilter(hosts, f)
	if len(got) != 1 || got[0]["host"] != "sw1" {
		t.Fatalf("applyFilter = %v, want only sw1", got)
	}
}
