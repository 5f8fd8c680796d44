package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
)

func TestSummaryContainsTotals(t *testing.T) {
	r := New("backup")
	r.Start()
	r.AddOK(inventory.Host{"host": "sw1", "os_name": "eos"}, 4096)
	r.AddFail(inventory.Host{"host": "sw2", "os_name": "ios"}, "TimeoutError")
	r.Stop()

	var buf bytes.Buffer
	out := r.Summary(&buf, "")

	if !strings.Contains(out, "TOTAL=2") {
		t.Errorf("expected TOTAL=2 in summary, got %q", out)
	}
	if !strings.Contains(out, "OK=1") {
		t.Errorf("expected OK=1 in summary, got %q", out)
	}
	if !strings.Contains(out, "FAIL=1") {
		t.Errorf("expected FAIL=1 in summary, got %q", out)
	}
	if !strings.Contains(out, "captured=4.1 kB") && !strings.Contains(out, "captured=4.0 kB") {
		t.Errorf("expected humanized byte count in summary, got %q", out)
	}
}

func TestSummaryNotColorizedForNonTerminal(t *testing.T) {
	r := New("backup")
	r.Start()
	r.AddOK(inventory.Host{"host": "sw1"}, 10)
	r.Stop()

	var buf bytes.Buffer
	out := r.Summary(&buf, "")
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no ANSI escapes when writer is not a terminal, got %q", out)
	}
}

func TestSummaryDefaultTimestampFormat(t *testing.T) {
	r := New("backup")
	r.Start()
	r.Stop()

	var buf bytes.Buffer
	out := r.Summary(&buf, "")
	if !strings.Contains(out, "start=") || !strings.Contains(out, "stop=") {
		t.Errorf("expected start/stop timestamps in summary, got %q", out)
	}
}
