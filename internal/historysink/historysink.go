// Package historysink implements the optional report-history plugin named
// in SPEC_FULL.md §4.I: a concrete `report(report)` hook (spec.md §6) that
// persists each run's summary to Postgres via github.com/jackc/pgx/v5,
// grounded in the teacher's checkin.DB (appliance/internal/checkin/db.go),
// which wraps a pgxpool.Pool the same way. It is registered only when
// config.HistorySink.DSN is set; the run's correctness never depends on
// it succeeding.
package historysink

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/netcfgbu/netcfgbu-go/internal/plugins"
	"github.com/netcfgbu/netcfgbu-go/internal/report"
)

// Sink wraps a pgx connection pool and records one row per completed run.
type Sink struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS netcfgbu_run_history (
	id          BIGSERIAL PRIMARY KEY,
	run_id      TEXT NOT NULL,
	command     TEXT NOT NULL,
	ok_count    INTEGER NOT NULL,
	fail_count  INTEGER NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Open connects to dsn, ensures the history table exists, and returns a
// Sink ready to register via Register.
func Open(ctx context.Context, dsn string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("historysink: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("historysink: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("historysink: create schema: %w", err)
	}
	return &Sink{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Sink) Close() {
	s.pool.Close()
}

// Record persists one run's summary. Errors are logged rather than
// returned, matching the plugin hook contract (spec.md §6: "a hook
// exception is logged and does not abort the run"). The report(report)
// hook always receives the concrete *report.Report the dispatcher builds;
// a report from anywhere else is recorded with an empty run ID/command.
func (s *Sink) Record(rep plugins.Report) {
	runID, command := "", ""
	if rr, ok := rep.(*report.Report); ok {
		runID = rr.RunID
		command = rr.Command
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO netcfgbu_run_history (run_id, command, ok_count, fail_count) VALUES ($1, $2, $3, $4)`,
		runID, command, rep.OKCount(), rep.FailCount(),
	)
	if err != nil {
		log.Printf("[historysink] failed to record run history: %v", err)
	}
}

// Register wires Record in as the report(report) hook.
func (s *Sink) Register(reg *plugins.Registry) {
	reg.OnReport(s.Record)
}
