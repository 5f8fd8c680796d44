// Package sshsession implements the per-host SSH state machine (spec.md
// §4.E): credential trial loop, PTY or exec capture, prompt detection, and
// atomic save. It is grounded in the teacher's sshexec executor
// (appliance/internal/sshexec/executor.go) for connection setup and in the
// original's netcfgbu_ssh.py for the phase ordering.
package sshsession

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/semaphore"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
	"github.com/netcfgbu/netcfgbu-go/internal/creds"
	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
	"github.com/netcfgbu/netcfgbu-go/internal/probe"
)

// Session drives one host through connect -> capture -> save. A Session is
// used for exactly one host for its whole lifetime (spec.md §3 invariant).
type Session struct {
	host      inventory.Host
	osName    string
	osProfile config.OSNameSpec
	sshArgs   map[string]string
	hostKeyCB ssh.HostKeyCallback
	jumpConn  *ssh.Client
	prompt    *promptMatcher
	variant   variant

	client          *ssh.Client
	sshSess         *ssh.Session
	stdin           io.WriteCloser
	stdout          io.Reader
	usesPTY         bool
	authenticatedAs string
	attempts        int
}

// Attempts returns the number of credentials tried during Connect
// (including the one that ultimately succeeded, if any). Used by the
// login command to populate login.csv's num_of_attempts column.
func (s *Session) Attempts() int {
	return s.attempts
}

// New builds a Session for host. globalSSHConfigs and the OS profile's own
// ssh_configs are merged per spec.md §4.E ("Per-connection args"); jumpConn
// is the shared tunnel client from internal/jumphost.Lookup, or nil for a
// direct connection; hostKeyCB implements the configured host key policy
// (internal/hostkeys, or ssh.InsecureIgnoreHostKey()).
func New(host inventory.Host, osName string, cfg *config.Config, jumpConn *ssh.Client, hostKeyCB ssh.HostKeyCallback) (*Session, error) {
	osProfile := cfg.OSProfile(osName)

	pm, err := newPromptMatcher(osProfile.PromptPattern)
	if err != nil {
		return nil, err
	}

	args := make(map[string]string, len(cfg.SSHConfigs)+len(osProfile.SSHConfigs))
	for k, v := range cfg.SSHConfigs {
		args[k] = v
	}
	for k, v := range osProfile.SSHConfigs {
		args[k] = v
	}

	return &Session{
		host:      host,
		osName:    osName,
		osProfile: osProfile,
		sshArgs:   args,
		hostKeyCB: hostKeyCB,
		jumpConn:  jumpConn,
		prompt:    pm,
		variant:   variantFor(osProfile.Connection),
	}, nil
}

func (s *Session) target() string {
	return s.host.Name()
}

func (s *Session) port() string {
	if p, ok := s.sshArgs["port"]; ok && p != "" {
		return p
	}
	return "22"
}

// Connect runs phase 1 (spec.md §4.E): try each credential in order under
// the admission semaphore, stopping at the first PermissionDenied-free
// connect. Any other connect error is fatal for this host.
func (s *Session) Connect(ctx context.Context, sem *semaphore.Weighted, credentials []creds.Credential) error {
	timeout := time.Duration(s.osProfile.Timeout) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultGetConfigTimeout * time.Second
	}

	var lastErr error
	for _, cred := range credentials {
		if err := sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("acquire admission slot: %w", err)
		}
		s.attempts++
		client, err := s.dial(ctx, cred, timeout)
		sem.Release(1)

		if err != nil {
			if isPermissionDenied(err) {
				lastErr = err
				continue
			}
			return classifyConnectErr(err)
		}

		s.client = client
		s.authenticatedAs = cred.Username
		needsPTY := len(s.osProfile.PreGetConfig) > 0 || s.variant.requiresPTY()
		if needsPTY {
			if err := s.openPTY(ctx, cred); err != nil {
				s.client.Close()
				return err
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = ErrPermissionDenied
	}
	return fmt.Errorf("%w: exhausted %d credentials: %v", ErrPermissionDenied, len(credentials), lastErr)
}

func (s *Session) dial(ctx context.Context, cred creds.Credential, timeout time.Duration) (*ssh.Client, error) {
	addr := net.JoinHostPort(s.target(), s.port())

	sshConfig := &ssh.ClientConfig{
		User:            cred.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(cred.Password.Reveal())},
		HostKeyCallback: s.hostKeyCB,
		Timeout:         timeout,
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if s.jumpConn != nil {
		conn, err := s.jumpConn.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s via jump host: %w", addr, err)
		}
		sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return ssh.NewClient(sshConn, chans, reqs), nil
	}

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// openPTY allocates the interactive session used by PTY-mode capture and,
// for the prompt-login variant, negotiates the login prompt first.
func (s *Session) openPTY(ctx context.Context, cred creds.Credential) error {
	sess, err := s.client.NewSession()
	if err != nil {
		return fmt.Errorf("%w: new session: %v", ErrConnectionLost, err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 9600,
		ssh.TTY_OP_OSPEED: 9600,
	}
	if err := sess.RequestPty("vt100", 80, 200, modes); err != nil {
		sess.Close()
		return fmt.Errorf("%w: request pty: %v", ErrConnectionLost, err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		return fmt.Errorf("%w: stdin pipe: %v", ErrConnectionLost, err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return fmt.Errorf("%w: stdout pipe: %v", ErrConnectionLost, err)
	}

	if err := sess.Shell(); err != nil {
		sess.Close()
		return fmt.Errorf("%w: start shell: %v", ErrConnectionLost, err)
	}

	s.sshSess = sess
	s.stdin = stdin
	s.stdout = stdout
	s.usesPTY = true

	return s.variant.afterPTY(ctx, s, cred.Username, cred.Password.Reveal())
}

// Close tears down the session's connection in all paths — success,
// capture failure, or exception (spec.md §3 "SSH connections" lifecycle).
func (s *Session) Close() {
	if s.sshSess != nil {
		s.sshSess.Close()
	}
	if s.client != nil {
		s.client.Close()
	}
}

// isPermissionDenied mirrors the teacher's isAuthError (sshexec/executor.go):
// golang.org/x/crypto/ssh reports failed auth as a plain handshake error
// string rather than a typed error.
func isPermissionDenied(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "no supported methods remain")
}

// classifyConnectErr maps a non-auth connect failure onto the taxonomy in
// spec.md §4.H; internal/report does the final label assignment from
// these wrapped sentinels.
func classifyConnectErr(err error) error {
	if probe.IsNameResolutionError(err) {
		return err
	}
	if probe.IsNoRouteToHost(err) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timeoutErr("connect")
	}
	return err
}
