package report

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/netcfgbu/netcfgbu-go/internal/probe"
	"github.com/netcfgbu/netcfgbu-go/internal/sshsession"
)

// CommandFailedError is the synthetic failure synthesized when a task
// completes without error but with a falsy result (spec.md §4.H: "<cmd>
// failed" on falsy result).
type CommandFailedError struct {
	Cmd string
}

func (e *CommandFailedError) Error() string {
	return e.Cmd + " failed"
}

// CommandFailed builds a CommandFailedError for the given command name.
func CommandFailed(cmd string) error {
	return &CommandFailedError{Cmd: cmd}
}

// ClassifyError reduces a task error to the taxonomy label in spec.md
// §4.H. Go has no runtime exception class names the way the original
// implementation's catch-all did, so the final fallback is the error's
// own message (documented in DESIGN.md).
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, sshsession.ErrPermissionDenied):
		return "All credentials failed"
	case errors.Is(err, sshsession.ErrConnectionLost):
		return "ConnectionLost"
	case errors.Is(err, sshsession.ErrHostKeyNotVerifiable):
		return "HostKeyNotVerifiable"
	case probe.IsNameResolutionError(err):
		return "NameResolutionError"
	case errors.Is(err, sshsession.ErrTimeout), errors.Is(err, probe.ErrTimeout):
		return "TimeoutError"
	case probe.IsNoRouteToHost(err):
		return "NoRouteToHost"
	}

	var cmdErr *CommandFailedError
	if errors.As(err, &cmdErr) {
		return cmdErr.Error()
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return "OSError"
	}

	return fmt.Sprint(err)
}
