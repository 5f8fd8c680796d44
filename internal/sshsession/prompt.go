package sshsession

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
)

// promptMatcher recognizes a device CLI prompt at the end of accumulated
// output (spec.md §4.E "Prompt pattern").
type promptMatcher struct {
	re *regexp.Regexp
}

func newPromptMatcher(body string) (*promptMatcher, error) {
	if body == "" {
		body = fmt.Sprintf("[%s]{1,%d}\\s*[#>$]", config.PromptValidChars, config.PromptMaxChars)
	}
	re, err := regexp.Compile(`(?im)^\r?(` + body + `)\s*$`)
	if err != nil {
		return nil, fmt.Errorf("compile prompt pattern: %w", err)
	}
	return &promptMatcher{re: re}, nil
}

func (m *promptMatcher) matchTail(buf []byte) bool {
	tail := buf
	if idx := bytes.LastIndexByte(buf, '\n'); idx >= 0 {
		tail = buf[idx+1:]
	}
	return m.re.Match(tail)
}

// readResult is what the background reader goroutine feeds back.
type readResult struct {
	n   int
	err error
}

// readUntilPrompt implements spec.md §4.E's read-until-prompt algorithm:
// append chunks to a byte buffer, after each read check whether the tail
// (text after the last newline) matches the prompt, and if so return
// everything up to (not including) that newline. Bounded by timeout.
//
// r.Read is blocking (ssh.Session's stdout pipe has no deadline support),
// so reads happen in a background goroutine and are consumed via a
// channel — this is the session's one genuine suspension point per read.
func readUntilPrompt(ctx context.Context, r io.Reader, m *promptMatcher, timeout time.Duration, stage string) ([]byte, error) {
	results := make(chan readResult, 1)
	chunk := make([]byte, 4096)

	readOnce := func() {
		n, err := r.Read(chunk)
		results <- readResult{n: n, err: err}
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var buf []byte
	go readOnce()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, timeoutErr(stage)
		case res := <-results:
			if res.n > 0 {
				buf = append(buf, chunk[:res.n]...)
				if m.matchTail(buf) {
					if idx := bytes.LastIndexByte(buf, '\n'); idx >= 0 {
						return buf[:idx], nil
					}
					return buf, nil
				}
			}
			if res.err != nil {
				if res.err == io.EOF {
					return nil, fmt.Errorf("%w: stream closed before prompt", ErrConnectionLost)
				}
				return nil, fmt.Errorf("read: %w", res.err)
			}
			go readOnce()
		}
	}
}
