package sshsession

import "errors"

// Sentinel errors classified by internal/report per spec.md §4.H / §7.
var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrConnectionLost       = errors.New("connection lost")
	ErrHostKeyNotVerifiable = errors.New("host key not verifiable")
	ErrTimeout              = errors.New("timeout")
)

// TimeoutError carries the phase a timeout occurred in for log messages
// while still unwrapping to ErrTimeout for report classification, which
// only distinguishes "any timeout" (spec.md §4.H).
type TimeoutError struct {
	Stage string
}

func (e *TimeoutError) Error() string {
	return "Timeout: " + e.Stage
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

func timeoutErr(stage string) error {
	return &TimeoutError{Stage: stage}
}
