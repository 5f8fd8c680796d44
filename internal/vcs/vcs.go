// Package vcs implements the VCS (git) integration named as an
// out-of-core collaborator in spec.md §1 ("specified only by interface")
// and surfaced through the `vcs prepare|save|status` CLI verbs in
// spec.md §6. The core dispatcher never imports this package directly;
// it is wired up only through the `git_report(success, message)` plugin
// hook (spec.md §6), exactly as a collaborator should be.
//
// No library in the retrieved corpus wraps git; every pack repo that
// touches version control shells out to the `git` binary the same way
// (e.g. gravitational-teleport's build tooling), so this package does
// the same via os/exec rather than inventing a go-git dependency for a
// component spec.md explicitly places outside the core.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
)

// run executes git with args inside dir, returning combined stdout.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}

// Prepare ensures configsDir is a git working tree with spec's remote and
// identity configured (spec.md §6 "vcs prepare"). It is idempotent: a
// directory that is already a repo with the remote set is left alone.
func Prepare(ctx context.Context, spec config.GitSpec, configsDir string) error {
	if _, err := run(ctx, configsDir, "rev-parse", "--is-inside-work-tree"); err != nil {
		if _, err := run(ctx, configsDir, "init"); err != nil {
			return fmt.Errorf("vcs prepare: init: %w", err)
		}
	}

	if spec.Username != "" {
		if _, err := run(ctx, configsDir, "config", "user.name", spec.Username); err != nil {
			return fmt.Errorf("vcs prepare: set user.name: %w", err)
		}
	}
	if spec.Email != "" {
		if _, err := run(ctx, configsDir, "config", "user.email", spec.Email); err != nil {
			return fmt.Errorf("vcs prepare: set user.email: %w", err)
		}
	}

	if spec.Repo != "" {
		name := spec.Name
		if name == "" {
			name = "origin"
		}
		if _, err := run(ctx, configsDir, "remote", "get-url", name); err != nil {
			if _, err := run(ctx, configsDir, "remote", "add", name, spec.Repo); err != nil {
				return fmt.Errorf("vcs prepare: add remote %s: %w", name, err)
			}
		} else {
			if _, err := run(ctx, configsDir, "remote", "set-url", name, spec.Repo); err != nil {
				return fmt.Errorf("vcs prepare: set remote %s: %w", name, err)
			}
		}
	}

	return nil
}

// Status returns `git status --porcelain` output for configsDir (spec.md
// §6 "vcs status").
func Status(ctx context.Context, configsDir string) (string, error) {
	out, err := run(ctx, configsDir, "status", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("vcs status: %w", err)
	}
	return out, nil
}

// Result is what Save reports back, handed verbatim to the
// git_report(success, message) plugin hook (spec.md §6).
type Result struct {
	Success bool
	Message string
}

// Save commits every change under configsDir and, when spec.Repo is set,
// pushes it (spec.md §6 "vcs save"). A clean tree (nothing to commit) is
// reported as success with a "nothing to commit" message rather than an
// error — a no-op run is not a failure.
func Save(ctx context.Context, spec config.GitSpec, configsDir, message string) Result {
	if _, err := run(ctx, configsDir, "add", "-A"); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	status, err := run(ctx, configsDir, "status", "--porcelain")
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	if strings.TrimSpace(status) == "" {
		return Result{Success: true, Message: "nothing to commit"}
	}

	if message == "" {
		message = "netcfgbu backup"
	}
	if _, err := run(ctx, configsDir, "commit", "-m", message); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	if spec.AddTag {
		tag := "backup-" + message
		if _, err := run(ctx, configsDir, "tag", tag); err != nil {
			return Result{Success: false, Message: err.Error()}
		}
	}

	if spec.Repo == "" {
		return Result{Success: true, Message: "committed locally: " + message}
	}

	name := spec.Name
	if name == "" {
		name = "origin"
	}
	if _, err := run(ctx, configsDir, "push", name, "HEAD"); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	return Result{Success: true, Message: "pushed: " + message}
}
