package report

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/netcfgbu/netcfgbu-go/internal/creds"
	"github.com/netcfgbu/netcfgbu-go/internal/probe"
	"github.com/netcfgbu/netcfgbu-go/internal/sshsession"
)

func TestClassifyErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"permission denied", sshsession.ErrPermissionDenied, "All credentials failed"},
		{"no credentials", creds.ErrNoCredentials, "no credentials available for host"},
		{"connection lost", sshsession.ErrConnectionLost, "ConnectionLost"},
		{"host key not verifiable", fmt.Errorf("%w: changed", sshsession.ErrHostKeyNotVerifiable), "HostKeyNotVerifiable"},
		{"ssh timeout", sshsession.ErrTimeout, "TimeoutError"},
		{"probe timeout", probe.ErrTimeout, "TimeoutError"},
		{"command failed", CommandFailed("show run"), "show run failed"},
		{"os error", syscall.ECONNRESET, "OSError"},
		{"unrecognized", errors.New("something else"), "something else"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyError(tc.err); got != tc.want {
				t.Errorf("ClassifyError(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassifyErrorNil(t *testing.T) {
	if got := ClassifyError(nil); got != "" {
		t.Errorf("ClassifyError(nil) = %q, want empty", got)
	}
}

func TestClassifyErrorNameResolution(t *testing.T) {
	err := &net.DNSError{Err: "no such host", Name: "bogus.invalid", IsNotFound: true}
	if got := ClassifyError(err); got != "NameResolutionError" {
		t.Errorf("ClassifyError(DNSError) = %q, want NameResolutionError", got)
	}
}

func TestClassifyErrorNoRouteToHost(t *testing.T) {
	err := &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}
	if got := ClassifyError(err); got != "NoRouteToHost" {
		t.Errorf("ClassifyError(EHOSTUNREACH) = %q, want NoRouteToHost", got)
	}
}

func TestCommandFailedError(t *testing.T) {
	err := CommandFailed("get_config")
	if err.Error() != "get_config failed" {
		t.Errorf("Error() = %q, want %q", err.Error(), "get_config failed")
	}
	var cmdErr *CommandFailedError
	if !errors.As(err, &cmdErr) {
		t.Fatal("expected errors.As to match *CommandFailedError")
	}
	if cmdErr.Cmd != "get_config" {
		t.Errorf("Cmd = %q, want get_config", cmdErr.Cmd)
	}
}
