package sshsession

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

// variant models the two session strategies named in spec.md §4.E /
// SPEC_FULL.md §9 ("Polymorphic session behavior") as a small closed sum
// type rather than open-class inheritance.
type variant interface {
	// requiresPTY reports whether this variant always needs a PTY, even
	// when the OS profile defines no pre_get_config commands (the
	// prompt-login variant needs one to drive the User:/Password: dance).
	requiresPTY() bool

	// afterPTY runs once the PTY is allocated and before the main
	// read-until-prompt loop begins. The basic variant does nothing.
	afterPTY(ctx context.Context, s *Session, username, password string) error
}

// basicVariant is the default: connect, optionally allocate a PTY for
// pre_get_config, then proceed straight to phase 2.
type basicVariant struct{}

func (basicVariant) requiresPTY() bool { return false }

func (basicVariant) afterPTY(context.Context, *Session, string, string) error { return nil }

// promptLoginVariant negotiates a username/password login prompt over the
// PTY before it is usable for anything else (spec.md §4.E "prompt-login").
type promptLoginVariant struct{}

func (promptLoginVariant) requiresPTY() bool { return true }

func (promptLoginVariant) afterPTY(ctx context.Context, s *Session, username, password string) error {
	const loginTimeout = 60 * time.Second

	if err := waitForLiteral(ctx, s.stdout, "User:", loginTimeout); err != nil {
		return err
	}
	if _, err := io.WriteString(s.stdin, username+"\n"); err != nil {
		return fmt.Errorf("%w: write username: %v", ErrConnectionLost, err)
	}

	if err := waitForLiteral(ctx, s.stdout, "Password:", loginTimeout); err != nil {
		return err
	}
	if _, err := io.WriteString(s.stdin, password+"\n"); err != nil {
		return fmt.Errorf("%w: write password: %v", ErrConnectionLost, err)
	}

	return nil
}

func variantFor(name string) variant {
	if name == "prompt-login" {
		return promptLoginVariant{}
	}
	return basicVariant{}
}

// waitForLiteral blocks (via a background reader goroutine, mirroring
// readUntilPrompt) until literal appears anywhere in the accumulated
// stream, or until timeout.
func waitForLiteral(ctx context.Context, r io.Reader, literal string, timeout time.Duration) error {
	results := make(chan readResult, 1)
	chunk := make([]byte, 4096)

	readOnce := func() {
		n, err := r.Read(chunk)
		results <- readResult{n: n, err: err}
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var buf []byte
	needle := []byte(literal)
	go readOnce()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return timeoutErr("awaiting " + literal)
		case res := <-results:
			if res.n > 0 {
				buf = append(buf, chunk[:res.n]...)
				if bytes.Contains(buf, needle) {
					return nil
				}
			}
			if res.err != nil {
				if res.err == io.EOF {
					return fmt.Errorf("%w: stream closed awaiting %q", ErrConnectionLost, literal)
				}
				return fmt.Errorf("read: %w", res.err)
			}
			go readOnce()
		}
	}
}
