package plugins

import (
	"errors"
	"testing"

	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
)

func TestHooksRunInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	var order []int
	r.OnBackupSuccess(func(inventory.Host, []byte) { order = append(order, 1) })
	r.OnBackupSuccess(func(inventory.Host, []byte) { order = append(order, 2) })

	r.BackupSuccess(inventory.Host{"host": "sw1"}, nil)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected hooks to run in registration order, got %v", order)
	}
}

func TestPanickingHookDoesNotStopOthers(t *testing.T) {
	r := NewRegistry()
	var ran bool
	r.OnBackupFailed(func(inventory.Host, error) { panic("boom") })
	r.OnBackupFailed(func(inventory.Host, error) { ran = true })

	r.BackupFailed(inventory.Host{"host": "sw1"}, errors.New("fail"))

	if !ran {
		t.Error("expected second hook to run despite first panicking")
	}
}

type fakeReport struct{ ok, fail int }

func (f fakeReport) OKCount() int   { return f.ok }
func (f fakeReport) FailCount() int { return f.fail }

func TestReportHookReceivesReport(t *testing.T) {
	r := NewRegistry()
	var got Report
	r.OnReport(func(rep Report) { got = rep })

	r.RunReport(fakeReport{ok: 3, fail: 1})

	if got == nil || got.OKCount() != 3 || got.FailCount() != 1 {
		t.Errorf("report hook did not receive expected report: %v", got)
	}
}

func TestGitReportHook(t *testing.T) {
	r := NewRegistry()
	var gotSuccess bool
	var gotMsg string
	r.OnGitReport(func(success bool, message string) {
		gotSuccess = success
		gotMsg = message
	})

	r.GitReport(true, "pushed 3 configs")

	if !gotSuccess || gotMsg != "pushed 3 configs" {
		t.Errorf("unexpected git report hook values: %v %q", gotSuccess, gotMsg)
	}
}
