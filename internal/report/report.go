// Package report implements the run aggregator (spec.md §4.H): it
// classifies per-host outcomes, tallies them, and emits the CSV artifacts
// and console summary the dispatcher produces at the end of a run.
package report

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
)

// OKEntry is one successful task outcome.
type OKEntry struct {
	Host   string
	OSName string
}

// FailEntry is one failed task outcome, already classified per spec.md
// §4.H's taxonomy table.
type FailEntry struct {
	Host   string
	OSName string
	Reason string
}

// LoginEntry records a test_login outcome (login command only).
type LoginEntry struct {
	Host        string
	OSName      string
	NumAttempts int
	LoginUsed   string // empty when every credential was rejected
}

// Report aggregates one run's outcomes. It is safe for concurrent use from
// multiple goroutines adding entries, but spec.md §5 notes the dispatcher
// only ever updates it from its single completion-consumer, so the lock
// here is a defensive measure rather than a concurrency requirement.
type Report struct {
	mu sync.Mutex

	Command string // "backup", "login", or "probe"
	RunID   string

	startWall time.Time
	stopWall  time.Time
	startMono time.Time
	stopMono  time.Time

	ok         []OKEntry
	fail       []FailEntry
	logins     []LoginEntry
	totalBytes uint64
}

// New creates an empty report for the given command, with a fresh run ID
// (spec.md §9 "Process-wide mutable singletons" -> Runtime threading;
// SPEC_FULL.md §6 uses the run ID in "DONE (k/N)" log lines).
func New(command string) *Report {
	return &Report{
		Command: command,
		RunID:   uuid.NewString(),
	}
}

// Start records the wall-clock and monotonic start instants. Must be
// called exactly once before dispatch begins.
func (r *Report) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startWall = time.Now()
	r.startMono = time.Now()
}

// Stop records the end instants. Must be called exactly once after every
// task has completed.
func (r *Report) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopWall = time.Now()
	r.stopMono = time.Now()
}

// Duration returns the run's wall-clock duration, valid only after Stop.
func (r *Report) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopMono.Sub(r.startMono)
}

// AddOK appends a successful outcome and tallies the captured config's
// byte size for the console summary's humanize.Bytes rendering.
func (r *Report) AddOK(host inventory.Host, capturedBytes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ok = append(r.ok, OKEntry{Host: host["host"], OSName: host["os_name"]})
	if capturedBytes > 0 {
		r.totalBytes += uint64(capturedBytes)
	}
}

// AddFail appends a failed outcome, already reduced to its taxonomy label
// by ClassifyError.
func (r *Report) AddFail(host inventory.Host, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = append(r.fail, FailEntry{Host: host["host"], OSName: host["os_name"], Reason: reason})
}

// AddLogin appends a test_login outcome.
func (r *Report) AddLogin(host inventory.Host, attempts int, loginUsed string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, LoginEntry{
		Host:        host["host"],
		OSName:      host["os_name"],
		NumAttempts: attempts,
		LoginUsed:   loginUsed,
	})
}

// OKCount satisfies internal/plugins.Report.
func (r *Report) OKCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ok)
}

// FailCount satisfies internal/plugins.Report.
func (r *Report) FailCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fail)
}

// Total is the number of tasks dispatched (spec.md §8 invariant: ok+fail
// == tasks).
func (r *Report) Total() int {
	return r.OKCount() + r.FailCount()
}

// TotalBytes is the sum of captured config sizes across every successful
// backup, used by the console summary's byte-count formatting.
func (r *Report) TotalBytes() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalBytes
}

func (r *Report) sortedFail() []FailEntry {
	r.mu.Lock()
	out := append([]FailEntry(nil), r.fail...)
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out
}

func (r *Report) sortedLogins() []LoginEntry {
	r.mu.Lock()
	out := append([]LoginEntry(nil), r.logins...)
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out
}
