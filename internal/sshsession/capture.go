package sshsession

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Capture runs phase 2 (spec.md §4.E): non-PTY exec mode when the OS
// profile defines no pre_get_config, PTY mode otherwise.
func (s *Session) Capture(ctx context.Context) ([]byte, error) {
	if !s.usesPTY {
		return s.captureExec(ctx)
	}
	return s.capturePTY(ctx)
}

// captureExec runs get_config over a single exec channel with no PTY and
// trims the echoed command line some devices still emit.
func (s *Session) captureExec(ctx context.Context) ([]byte, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("%w: new session: %v", ErrConnectionLost, err)
	}
	defer sess.Close()

	cmd := s.osProfile.GetConfig

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := sess.Output(cmd)
		done <- result{out: out, err: err}
	}()

	timeout := time.Duration(s.osProfile.Timeout) * time.Second
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, timeoutErr("getting running configuration")
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("%s failed: %w", cmd, r.err)
		}
		return trimEchoedCommand(r.out, cmd), nil
	}
}

func trimEchoedCommand(out []byte, cmd string) []byte {
	prefix := []byte(cmd + "\n")
	if bytes.HasPrefix(out, prefix) {
		return out[len(prefix):]
	}
	return out
}

// capturePTY drives the interactive session through spec.md §4.E's three
// strict steps: await the initial prompt, run each pre_get_config command,
// then run get_config and extract the body between its echo and the
// trailing prompt.
func (s *Session) capturePTY(ctx context.Context) ([]byte, error) {
	timeout := time.Duration(s.osProfile.Timeout) * time.Second

	if _, err := readUntilPrompt(ctx, s.stdout, s.prompt, 15*time.Second, "awaiting prompt"); err != nil {
		return nil, err
	}

	for _, cmd := range s.osProfile.PreGetConfig {
		if err := s.runAndAwaitPrompt(ctx, cmd, timeout, "pre-get-running"); err != nil {
			return nil, err
		}
	}

	out, err := s.runAndCapture(ctx, s.osProfile.GetConfig, timeout, "getting running configuration")
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) runAndAwaitPrompt(ctx context.Context, cmd string, timeout time.Duration, stage string) error {
	if _, err := io.WriteString(s.stdin, cmd+"\n"); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrConnectionLost, cmd, err)
	}
	_, err := readUntilPrompt(ctx, s.stdout, s.prompt, timeout, stage)
	return err
}

func (s *Session) runAndCapture(ctx context.Context, cmd string, timeout time.Duration, stage string) ([]byte, error) {
	if _, err := io.WriteString(s.stdin, cmd+"\n"); err != nil {
		return nil, fmt.Errorf("%w: write %q: %v", ErrConnectionLost, cmd, err)
	}
	out, err := readUntilPrompt(ctx, s.stdout, s.prompt, timeout, stage)
	if err != nil {
		return nil, err
	}
	return trimEchoedCommand(out, cmd), nil
}

// stripCR removes all carriage returns, leaving bare LF line endings
// (spec.md §8: "contains no \r").
func stripCR(s string) string {
	return strings.ReplaceAll(s, "\r", "")
}
