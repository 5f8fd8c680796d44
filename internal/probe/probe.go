// Package probe implements the reachability check (spec.md §4.D): a plain
// TCP connect test against port 22 with a bounded timeout.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// ErrTimeout is returned (wrapped) when raiseOnTimeout is true and the
// connect attempt does not complete in time.
var ErrTimeout = errors.New("timeout")

// Probe performs a TCP connect to target:22 with the given timeout.
// Returns true on connect, false on timeout unless raiseOnTimeout is set,
// in which case a timeout is returned as a wrapped ErrTimeout. Other
// socket errors (name resolution, no route) are wrapped with %w, so the
// caller (internal/report) can still classify them per spec.md §4.H.
func Probe(ctx context.Context, target string, timeout time.Duration, raiseOnTimeout bool) (bool, error) {
	if timeout <= 0 {
		// A Dialer with Timeout==0 means "no deadline" in net.Dialer, which
		// would block indefinitely instead of failing fast. spec.md §8
		// requires probe(h, t=0) to return promptly, so treat <=0 as an
		// effectively-instant deadline.
		timeout = time.Nanosecond
	}

	dialer := net.Dialer{Timeout: timeout}
	addr := net.JoinHostPort(target, "22")

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err == nil {
		conn.Close()
		return true, nil
	}

	if isTimeout(err) {
		if raiseOnTimeout {
			return false, fmt.Errorf("probe %s: %w", target, ErrTimeout)
		}
		return false, nil
	}

	return false, fmt.Errorf("probe %s: %w", target, err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsNoRouteToHost reports whether err is the OS-level EHOSTUNREACH
// condition (spec.md §4.H, errno 113).
func IsNoRouteToHost(err error) bool {
	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		return sysErr == syscall.EHOSTUNREACH
	}
	return false
}

// IsNameResolutionError reports whether err came from a DNS lookup
// failure (spec.md §4.H "NameResolutionError").
func IsNameResolutionError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
