package sshsession

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"

	"github.com/netcfgbu/netcfgbu-go/internal/creds"
)

// TestLogin runs phase 1 only (spec.md §4.E "test_login variant"). On
// success it returns the username that authenticated; if every credential
// is rejected it returns ("", nil) rather than an error, since exhausting
// credentials is the expected negative outcome for this command. Any
// other connect error still propagates. The returned int is the number of
// credentials attempted, for login.csv's num_of_attempts column.
func TestLogin(ctx context.Context, s *Session, sem *semaphore.Weighted, credentials []creds.Credential) (string, int, error) {
	defer s.Close()

	err := s.Connect(ctx, sem, credentials)
	if err == nil {
		return s.authenticatedAs, s.Attempts(), nil
	}
	if errors.Is(err, ErrPermissionDenied) {
		return "", s.Attempts(), nil
	}
	return "", s.Attempts(), err
}
