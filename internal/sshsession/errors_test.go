package sshsession

import (
	"errors"
	"testing"
)

func TestTimeoutErrorUnwrapsToErrTimeout(t *testing.T) {
	err := timeoutErr("awaiting prompt")
	if !errors.Is(err, ErrTimeout) {
		t.Error("expected timeoutErr to unwrap to ErrTimeout")
	}
	if err.Error() != "Timeout: awaiting prompt" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestIsPermissionDenied(t *testing.T) {
	cases := map[string]bool{
		"ssh: handshake failed: ssh: unable to authenticate, attempted methods [none password], no supported methods remain": true,
		"dial tcp 10.0.0.1:22: connect: connection refused":                                                                  false,
	}
	for msg, want := range cases {
		if got := isPermissionDenied(errors.New(msg)); got != want {
			t.Errorf("isPermissionDenied(%q) = %v, want %v", msg, got, want)
		}
	}
}
