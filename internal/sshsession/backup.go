package sshsession

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
	"github.com/netcfgbu/netcfgbu-go/internal/creds"
)

// BackupConfig runs the full per-host pipeline for the `backup` command:
// connect (phase 1), capture (phase 2), save (phase 3). The connection is
// closed on every exit path, per spec.md §3's SSH-connection lifecycle. On
// success it returns the number of bytes captured, so the dispatcher can
// tally it into the run's report for console byte-count formatting.
func BackupConfig(ctx context.Context, s *Session, sem *semaphore.Weighted, credentials []creds.Credential, cfg *config.Config) (int, error) {
	defer s.Close()

	if err := s.Connect(ctx, sem, credentials); err != nil {
		return 0, err
	}

	raw, err := s.Capture(ctx)
	if err != nil {
		return 0, err
	}

	if err := Save(raw, s.osProfile, cfg.Linters, cfg.Defaults.ConfigsDir, s.host["host"]); err != nil {
		return 0, err
	}
	return len(raw), nil
}
