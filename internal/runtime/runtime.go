// Package runtime bundles the values that the original implementation kept
// as process-wide mutable singletons (spec.md §9): the admission semaphore,
// the jump-host registry, the plugin registry, the logger, and the loaded
// configuration. A Runtime is built once per command in internal/cli and
// threaded explicitly into the dispatcher and session factories. It is not
// housed in internal/config because internal/jumphost already imports
// internal/config to build its Registry — putting Runtime there would
// create an import cycle back through jumphost.Registry.
package runtime

import (
	"log"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/semaphore"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
	"github.com/netcfgbu/netcfgbu-go/internal/historysink"
	"github.com/netcfgbu/netcfgbu-go/internal/hostkeys"
	"github.com/netcfgbu/netcfgbu-go/internal/jumphost"
	"github.com/netcfgbu/netcfgbu-go/internal/plugins"
)

// Runtime holds the shared, run-scoped collaborators. None of them is kept
// in a package-level variable; every component that needs one of these
// values receives it as an explicit argument.
type Runtime struct {
	Config      *config.Config
	Jumphost    *jumphost.Registry
	Plugins     *plugins.Registry
	Logger      *log.Logger
	HostKeys    *hostkeys.Store
	HistorySink *historysink.Sink

	mu  sync.Mutex
	sem *semaphore.Weighted
}

// New constructs a Runtime with a fresh admission semaphore sized to
// maxStartups (spec.md §3 invariant: "at most max_startups SSH handshakes
// are initiating simultaneously"). jh and pl may be nil (no jump hosts
// configured / no plugins registered); hks may be nil to fall back to the
// insecure-ignore host key policy.
func New(cfg *config.Config, jh *jumphost.Registry, pl *plugins.Registry, hks *hostkeys.Store, maxStartups int) *Runtime {
	if maxStartups <= 0 {
		maxStartups = config.DefaultMaxStartups
	}
	if pl == nil {
		pl = plugins.NewRegistry()
	}
	return &Runtime{
		Config:   cfg,
		Jumphost: jh,
		Plugins:  pl,
		Logger:   log.Default(),
		HostKeys: hks,
		sem:      semaphore.NewWeighted(int64(maxStartups)),
	}
}

// Semaphore returns the current admission semaphore. Safe for concurrent
// use with SetMaxStartups.
func (rt *Runtime) Semaphore() *semaphore.Weighted {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.sem
}

// SetMaxStartups atomically replaces the admission semaphore (spec.md §5:
// "replaces the semaphore atomically; in-flight acquisitions under the old
// semaphore are unaffected"). Must be called only before dispatch begins.
func (rt *Runtime) SetMaxStartups(n int) {
	if n <= 0 {
		n = config.DefaultMaxStartups
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.sem = semaphore.NewWeighted(int64(n))
}

// HostKeyCallback returns the configured host-key verification policy:
// permissive when the global ssh_configs set host_key_policy: insecure,
// else TOFU via the Store when present, else permissive (spec.md §4.E.1).
func (rt *Runtime) HostKeyCallback() ssh.HostKeyCallback {
	if rt.Config != nil && rt.Config.SSHConfigs["host_key_policy"] == "insecure" {
		return hostkeys.InsecureIgnore()
	}
	if rt.HostKeys != nil {
		return rt.HostKeys.Callback()
	}
	return hostkeys.InsecureIgnore()
}

// Close tears down run-scoped resources that own OS handles.
func (rt *Runtime) Close() {
	if rt.Jumphost != nil {
		rt.Jumphost.Close()
	}
	if rt.HostKeys != nil {
		rt.HostKeys.Close()
	}
	if rt.HistorySink != nil {
		rt.HistorySink.Close()
	}
}
