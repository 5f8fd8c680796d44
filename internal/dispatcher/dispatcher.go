// Package dispatcher implements the bounded-concurrency task fan-out
// (spec.md §4.G): one goroutine per filtered inventory record, eager
// creation decoupled from semaphore-gated admission (internal/sshsession
// acquires the admission slot itself), and an as-completed result stream
// reduced into a internal/report.Report. Grounded in the teacher's
// goroutine-per-target style (appliance/internal/daemon/netscan.go,
// linuxscan.go): one unbuffered launch per target, results drained off a
// single buffered channel.
package dispatcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
	"github.com/netcfgbu/netcfgbu-go/internal/creds"
	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
	"github.com/netcfgbu/netcfgbu-go/internal/probe"
	"github.com/netcfgbu/netcfgbu-go/internal/report"
	"github.com/netcfgbu/netcfgbu-go/internal/runtime"
	"github.com/netcfgbu/netcfgbu-go/internal/sshsession"
)

// Command names accepted by Dispatch, matching spec.md §6's CLI surface.
const (
	Backup = "backup"
	Login  = "login"
	Probe  = "probe"
)

// outcome is what one host's task produced, normalized across the three
// commands (spec.md §4.G: "completion value is the per-command result").
type outcome struct {
	host          inventory.Host
	seq           int
	err           error
	capturedBytes int
	loginUsed     string
	attempts      int
	isLogin       bool
}

// Dispatch runs command against hosts under rt's admission semaphore and
// jump-host registry, and returns the aggregated report. Hosts are started
// eagerly; admission gating happens inside internal/sshsession.Connect, not
// here (spec.md §4.G step 1: "creation != admission").
func Dispatch(ctx context.Context, command string, hosts []inventory.Host, rt *runtime.Runtime) (*report.Report, error) {
	rep := report.New(command)
	rep.Start()
	defer rep.Stop()

	if len(hosts) == 0 {
		return rep, fmt.Errorf("no inventory matching limits")
	}

	results := make(chan outcome, len(hosts))
	for _, h := range hosts {
		go func(h inventory.Host) {
			results <- runTask(ctx, command, h, rt)
		}(h)
	}

	seq := 0
	for range hosts {
		out := <-results
		seq++
		recordOutcome(rep, rt, out, seq, len(hosts))
	}

	return rep, nil
}

func runTask(ctx context.Context, command string, h inventory.Host, rt *runtime.Runtime) outcome {
	switch command {
	case Probe:
		return probeTask(ctx, h, rt)
	case Login:
		return loginTask(ctx, h, rt)
	case Backup:
		return backupTask(ctx, h, rt)
	default:
		return outcome{host: h, err: fmt.Errorf("unknown command %q", command)}
	}
}

func probeTask(ctx context.Context, h inventory.Host, rt *runtime.Runtime) outcome {
	timeout := config.DefaultProbeTimeout
	ok, err := probe.Probe(ctx, h.Name(), secondsToDuration(timeout), false)
	if err != nil {
		return outcome{host: h, err: err}
	}
	if !ok {
		return outcome{host: h, err: report.CommandFailed("probe")}
	}
	return outcome{host: h}
}

func loginTask(ctx context.Context, h inventory.Host, rt *runtime.Runtime) outcome {
	credentials, sess, err := prepareSession(h, rt)
	if err != nil {
		return outcome{host: h, err: err, isLogin: true}
	}

	username, attempts, err := sshsession.TestLogin(ctx, sess, rt.Semaphore(), credentials)
	if err != nil {
		return outcome{host: h, err: err, isLogin: true, attempts: attempts}
	}
	if username == "" {
		return outcome{host: h, err: sshsession.ErrPermissionDenied, isLogin: true, attempts: attempts}
	}
	return outcome{host: h, isLogin: true, attempts: attempts, loginUsed: username}
}

func backupTask(ctx context.Context, h inventory.Host, rt *runtime.Runtime) outcome {
	credentials, sess, err := prepareSession(h, rt)
	if err != nil {
		return outcome{host: h, err: err}
	}

	n, err := sshsession.BackupConfig(ctx, sess, rt.Semaphore(), credentials, rt.Config)
	if err != nil {
		return outcome{host: h, err: err}
	}
	return outcome{host: h, capturedBytes: n}
}

// prepareSession resolves the host's credential list, looks up any
// jump-host tunnel, and builds the Session that drives the connection.
func prepareSession(h inventory.Host, rt *runtime.Runtime) ([]creds.Credential, *sshsession.Session, error) {
	osName := h["os_name"]
	osProfile := rt.Config.OSProfile(osName)

	credentials, err := creds.Resolve(h["username"], h["password"], osProfile.Credentials, rt.Config.Defaults.Credentials, rt.Config.Credentials)
	if err != nil {
		return nil, nil, err
	}

	var jumpConn *ssh.Client
	if rt.Jumphost != nil {
		jumpConn, err = rt.Jumphost.Lookup(h)
		if err != nil {
			return nil, nil, err
		}
	}

	sess, err := sshsession.New(h, osName, rt.Config, jumpConn, rt.HostKeyCallback())
	if err != nil {
		return nil, nil, err
	}
	return credentials, sess, nil
}

// recordOutcome folds one completed task into the report, runs the
// matching plugin hook, and emits the "DONE (k/N)" log line (spec.md
// §4.G step 4).
func recordOutcome(rep *report.Report, rt *runtime.Runtime, out outcome, seq, total int) {
	host := out.host["host"]

	if out.isLogin {
		rep.AddLogin(out.host, out.attempts, out.loginUsed)
	}

	if out.err == nil {
		rep.AddOK(out.host, out.capturedBytes)
		if !out.isLogin {
			rt.Plugins.BackupSuccess(out.host, nil)
		}
		log.Printf("[dispatch] run=%s DONE (%d/%d): %s - PASS", rep.RunID, seq, total, host)
		return
	}

	reason := report.ClassifyError(out.err)
	rep.AddFail(out.host, reason)
	if !out.isLogin {
		rt.Plugins.BackupFailed(out.host, out.err)
	}
	log.Printf("[dispatch] run=%s DONE (%d/%d): %s - %s", rep.RunID, seq, total, host, reason)
}

func secondsToDuration(seconds int) (d time.Duration) {
	return time.Duration(seconds) * time.Second
}
