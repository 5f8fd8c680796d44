package linter

import (
	"testing"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
)

func TestLintConcreteScenario(t *testing.T) {
	spec := config.LinterSpec{ConfigStartsAfter: "!Time:", ConfigEndsAt: "! end-test-marker"}
	input := "!Command:...\n!Time: x\n<BODY>\n! end-test-marker"
	got := Lint(input, spec)
	want := "<BODY>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLintIdempotent(t *testing.T) {
	spec := config.LinterSpec{ConfigStartsAfter: "!Time:", ConfigEndsAt: "! end-test-marker"}
	input := "!Command:...\n!Time: x\n<BODY>\n! end-test-marker"
	once := Lint(input, spec)
	twice := Lint(once, spec)
	if once != twice {
		t.Errorf("lint not idempotent: once=%q twice=%q", once, twice)
	}
}

func TestLintNoSpecReturnsUnchanged(t *testing.T) {
	input := "whatever\nconfig\n"
	if got := Lint(input, config.LinterSpec{}); got != input {
		t.Errorf("expected unchanged content, got %q", got)
	}
}

func TestLintEndsAtNotFoundKeepsAll(t *testing.T) {
	spec := config.LinterSpec{ConfigEndsAt: "! nonexistent-marker"}
	input := "line1\nline2\n"
	if got := Lint(input, spec); got != input {
		t.Errorf("expected unchanged content when marker absent, got %q", got)
	}
}
