package report

import (
	"testing"
	"time"

	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
)

func TestNewAssignsRunID(t *testing.T) {
	r1 := New("backup")
	r2 := New("backup")
	if r1.RunID == "" {
		t.Fatal("expected non-empty RunID")
	}
	if r1.RunID == r2.RunID {
		t.Error("expected distinct RunIDs across reports")
	}
	if r1.Command != "backup" {
		t.Errorf("Command = %q, want backup", r1.Command)
	}
}

func TestAddOKAndAddFailTotals(t *testing.T) {
	r := New("backup")
	r.AddOK(inventory.Host{"host": "sw1", "os_name": "eos"}, 1200)
	r.AddOK(inventory.Host{"host": "sw2", "os_name": "eos"}, 800)
	r.AddFail(inventory.Host{"host": "sw3", "os_name": "ios"}, "TimeoutError")

	if got := r.OKCount(); got != 2 {
		t.Errorf("OKCount() = %d, want 2", got)
	}
	if got := r.FailCount(); got != 1 {
		t.Errorf("FailCount() = %d, want 1", got)
	}
	if got := r.Total(); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
	if got := r.TotalBytes(); got != 2000 {
		t.Errorf("TotalBytes() = %d, want 2000", got)
	}
}

func TestAddOKZeroBytesNotTallied(t *testing.T) {
	r := New("backup")
	r.AddOK(inventory.Host{"host": "sw1"}, 0)
	if got := r.TotalBytes(); got != 0 {
		t.Errorf("TotalBytes() = %d, want 0", got)
	}
}

func TestAddLogin(t *testing.T) {
	r := New("login")
	r.AddLogin(inventory.Host{"host": "sw1", "os_name": "eos"}, 2, "admin")
	logins := r.sortedLogins()
	if len(logins) != 1 {
		t.Fatalf("expected 1 login entry, got %d", len(logins))
	}
	if logins[0].NumAttempts != 2 || logins[0].LoginUsed != "admin" {
		t.Errorf("unexpected login entry: %+v", logins[0])
	}
}

func TestDuration(t *testing.T) {
	r := New("backup")
	r.Start()
	time.Sleep(5 * time.Millisecond)
	r.Stop()
	if r.Duration() <= 0 {
		t.Error("expected positive duration after Start/Stop")
	}
}

func TestSortedFailOrderedByHost(t *testing.T) {
	r := New("backup")
	r.AddFail(inventory.Host{"host": "sw3"}, "x")
	r.AddFail(inventory.Host{"host": "sw1"}, "y")
	r.AddFail(inventory.Host{"host": "sw2"}, "z")

	out := r.sortedFail()
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}
	if out[0].Host != "sw1" || out[1].Host != "sw2" || out[2].Host != "sw3" {
		t.Errorf("entries not sorted by host: %+v", out)
	}
}
