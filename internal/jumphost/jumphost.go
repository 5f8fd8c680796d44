// Package jumphost implements the jump-host registry (spec.md §4.C): it
// pre-computes which hosts route through which proxy and holds one shared
// SSH tunnel per proxy, connected once per run.
package jumphost

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
	"github.com/netcfgbu/netcfgbu-go/internal/filtering"
	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
)

// ErrJumpHostDown is raised when a session requests a tunnel that was
// selected but never successfully connected (spec.md §4.C).
var ErrJumpHostDown = fmt.Errorf("JumpHostDown")

// jumpHost is one configured proxy plus the filters that decide whether a
// given host routes through it (an include filter, an exclude filter, or
// both — matching jumphosts.py's JumpHost, which keeps one filter per
// configured constraint list and matches if any of them does).
type jumpHost struct {
	spec    config.JumphostSpec
	filters []*filtering.Filter

	client    *ssh.Client
	connected bool
}

func (j *jumpHost) matches(h inventory.Host) bool {
	rec := filtering.Record(h)
	for _, f := range j.filters {
		if f.Match(rec) {
			return true
		}
	}
	return false
}

// Registry holds the jump hosts selected for the current run and their
// shared tunnels.
type Registry struct {
	all       []*jumpHost
	available []*jumpHost
}

// NewRegistry builds per-spec include/exclude filters, then computes, for
// every inventory record, the first spec whose filter accepts it. The set
// of specs so selected becomes Registry.available — specs never selected
// are never dialed. A spec with neither include nor exclude never matches
// anything (spec.md §4.C: "A spec with neither include nor exclude is
// never selected").
func NewRegistry(specs []config.JumphostSpec, hosts []inventory.Host, fieldNames []string) (*Registry, error) {
	r := &Registry{}

	for _, spec := range specs {
		if spec.Name == "" {
			spec.Name = spec.Proxy
		}
		jh := &jumpHost{spec: spec}

		if len(spec.Include) > 0 {
			f, err := filtering.Build(spec.Include, fieldNames, filtering.Include)
			if err != nil {
				return nil, fmt.Errorf("jumphost %s include: %w", spec.Name, err)
			}
			jh.filters = append(jh.filters, f)
		}
		if len(spec.Exclude) > 0 {
			f, err := filtering.Build(spec.Exclude, fieldNames, filtering.Exclude)
			if err != nil {
				return nil, fmt.Errorf("jumphost %s exclude: %w", spec.Name, err)
			}
			jh.filters = append(jh.filters, f)
		}

		r.all = append(r.all, jh)
	}

	selected := map[*jumpHost]bool{}
	for _, h := range hosts {
		for _, jh := range r.all {
			if jh.matches(h) {
				selected[jh] = true
				break // first matching spec wins
			}
		}
	}

	for _, jh := range r.all {
		if selected[jh] {
			r.available = append(r.available, jh)
		}
	}

	return r, nil
}

// ConnectAll opens each selected proxy concurrently over SSH, bounded by
// its spec's own timeout. Returns true iff every selected proxy connected;
// failures are logged and leave that proxy unconnected, so lookups for
// hosts routed through it later raise ErrJumpHostDown.
func (r *Registry) ConnectAll(ctx context.Context, trial config.Credential) bool {
	if len(r.available) == 0 {
		return true
	}

	type result struct {
		jh  *jumpHost
		err error
	}
	results := make(chan result, len(r.available))

	for _, jh := range r.available {
		go func(jh *jumpHost) {
			err := jh.connect(ctx, trial)
			results <- result{jh: jh, err: err}
		}(jh)
	}

	allOK := true
	for range r.available {
		res := <-results
		if res.err != nil {
			log.Printf("[jumphost] connect to %s failed: %v", res.jh.spec.Name, res.err)
			allOK = false
			continue
		}
		log.Printf("[jumphost] connected to %s", res.jh.spec.Name)
	}
	return allOK
}

func (jh *jumpHost) connect(ctx context.Context, trial config.Credential) error {
	u, err := url.Parse("ssh://" + jh.spec.Proxy)
	if err != nil {
		return fmt.Errorf("parse proxy %q: %w", jh.spec.Proxy, err)
	}

	user := u.User.Username()
	if user == "" {
		user = trial.Username
	}
	port := u.Port()
	if port == "" {
		port = "22"
	}

	timeout := time.Duration(jh.spec.Timeout) * time.Second
	sshConfig := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(trial.Password.Reveal())},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // spec.md §4.C: jump-host tunnels use known_hosts:none semantics like direct sessions
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(u.Hostname(), port)

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake %s: %w", addr, err)
	}

	jh.client = ssh.NewClient(sshConn, chans, reqs)
	jh.connected = true
	return nil
}

// Lookup returns the shared *ssh.Client tunnel for host, or nil if the host
// connects directly (no jump host). Returns ErrJumpHostDown if a matching
// jump host was selected but failed to connect.
func (r *Registry) Lookup(h inventory.Host) (*ssh.Client, error) {
	for _, jh := range r.available {
		if jh.matches(h) {
			if !jh.connected {
				return nil, fmt.Errorf("%w: %s", ErrJumpHostDown, jh.spec.Name)
			}
			return jh.client, nil
		}
	}
	return nil, nil
}

// Close tears down every connected tunnel at run end.
func (r *Registry) Close() {
	for _, jh := range r.available {
		if jh.client != nil {
			jh.client.Close()
		}
	}
}
