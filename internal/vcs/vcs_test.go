package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
)

func skipIfNoGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func TestPrepareInitializesRepo(t *testing.T) {
	skipIfNoGit(t)
	dir := t.TempDir()
	spec := config.GitSpec{Username: "netcfgbu", Email: "netcfgbu@example.com"}

	if err := Prepare(context.Background(), spec, dir); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		t.Fatalf("expected .git directory: %v", err)
	}

	// idempotent
	if err := Prepare(context.Background(), spec, dir); err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
}

func TestSaveNothingToCommit(t *testing.T) {
	skipIfNoGit(t)
	dir := t.TempDir()
	spec := config.GitSpec{Username: "netcfgbu", Email: "netcfgbu@example.com"}
	if err := Prepare(context.Background(), spec, dir); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	res := Save(context.Background(), spec, dir, "empty")
	if !res.Success || res.Message != "nothing to commit" {
		t.Errorf("Save on clean tree = %+v", res)
	}
}

func TestSaveCommitsChanges(t *testing.T) {
	skipIfNoGit(t)
	dir := t.TempDir()
	spec := config.GitSpec{Username: "netcfgbu", Email: "netcfgbu@example.com"}
	if err := Prepare(context.Background(), spec, dir); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "switch1.cfg"), []byte("hostname switch1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	res := Save(context.Background(), spec, dir, "backup run 1")
	if !res.Success {
		t.Fatalf("Save: %+v", res)
	}

	status, err := Status(context.Background(), dir)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != "" {
		t.Errorf("expected clean status after commit, got %q", status)
	}
}
