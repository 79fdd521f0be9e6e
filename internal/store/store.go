// Package store keeps a history of validation runs in PostgreSQL.
//
// The store is optional: it is only opened when a database URL is
// configured. Each run is written in one transaction, the violations through
// the COPY protocol.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/mrovalidate/internal/core"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// DB is a DBTX that can start transactions.
type DB interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// ErrRunNotFound is returned when a run ID has no stored run.
var ErrRunNotFound = errors.New("run not found")

// Run is a stored validation run.
type Run struct {
	ID         uuid.UUID     `json:"id"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	Outcome    string        `json:"outcome"`
	Tables     int           `json:"tables"`
	Violations int           `json:"violations"`
}

// Store reads and writes run history.
type Store struct {
	db DB
}

// New returns a store backed by db.
func New(db DB) *Store {
	return &Store{db: db}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS validation_runs (
		id              UUID PRIMARY KEY,
		started_at      TIMESTAMPTZ NOT NULL,
		duration_ms     BIGINT NOT NULL,
		outcome         TEXT NOT NULL,
		table_count     INTEGER NOT NULL,
		violation_count INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS validation_violations (
		run_id       UUID NOT NULL REFERENCES validation_runs (id) ON DELETE CASCADE,
		id           INTEGER NOT NULL,
		table_key    TEXT NOT NULL,
		cell         TEXT NOT NULL,
		level        TEXT NOT NULL,
		rule_id      TEXT NOT NULL,
		rule_name    TEXT NOT NULL,
		value        TEXT,
		fix          TEXT,
		instructions TEXT NOT NULL,
		PRIMARY KEY (run_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS validation_violations_rule_idx ON validation_violations (rule_id)`,
	`CREATE INDEX IF NOT EXISTS validation_runs_started_idx ON validation_runs (started_at DESC)`,
}

// violationColumns lists the COPY columns in the order violationRows
// produces values.
var violationColumns = []string{
	"run_id", "id", "table_key", "cell", "level",
	"rule_id", "rule_name", "value", "fix", "instructions",
}

// Migrate creates the history tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SaveRun stores r and its violations atomically.
func (s *Store) SaveRun(ctx context.Context, r *core.Report) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	runID := toPgUUID(r.RunID)

	_, err = tx.Exec(ctx,
		`INSERT INTO validation_runs (id, started_at, duration_ms, outcome, table_count, violation_count)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		runID,
		pgtype.Timestamptz{Time: r.StartedAt, Valid: true},
		r.Duration.Milliseconds(),
		r.Outcome(),
		len(r.Tables),
		len(r.Violations),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(r.Violations) > 0 {
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"validation_violations"},
			violationColumns,
			pgx.CopyFromRows(violationRows(runID, r.Violations)),
		)
		if err != nil {
			return fmt.Errorf("copy violations: %w", err)
		}
		if n != int64(len(r.Violations)) {
			return fmt.Errorf("copy violations: wrote %d of %d rows", n, len(r.Violations))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, started_at, duration_ms, outcome, table_count, violation_count
		 FROM validation_runs
		 ORDER BY started_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id         pgtype.UUID
			startedAt  pgtype.Timestamptz
			durationMS int64
			run        Run
		)
		if err := rows.Scan(&id, &startedAt, &durationMS, &run.Outcome, &run.Tables, &run.Violations); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.ID = fromPgUUID(id)
		run.StartedAt = startedAt.Time
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Violations returns the stored violations of a run in ID order.
// Returns ErrRunNotFound if the run does not exist.
func (s *Store) Violations(ctx context.Context, runID uuid.UUID) ([]core.Violation, error) {
	id := toPgUUID(runID)

	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM validation_runs WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	if !exists {
		return nil, ErrRunNotFound
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, table_key, cell, level, rule_id, rule_name, value, fix, instructions
		 FROM validation_violations
		 WHERE run_id = $1
		 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	defer rows.Close()

	var out []core.Violation
	for rows.Next() {
		var (
			v          core.Violation
			level      string
			value, fix pgtype.Text
		)
		if err := rows.Scan(&v.ID, &v.Table, &v.Cell, &level, &v.RuleID, &v.RuleName, &value, &fix, &v.Instructions); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		v.Level = core.Level(level)
		v.Value = value.String
		v.Fix = fix.String
		out = append(out, v)
	}
	return out, rows.Err()
}

func violationRows(runID pgtype.UUID, vs []core.Violation) [][]any {
	rows := make([][]any, len(vs))
	for i, v := range vs {
		rows[i] = []any{
			runID,
			int32(v.ID),
			v.Table,
			v.Cell,
			string(v.Level),
			v.RuleID,
			v.RuleName,
			toPgText(v.Value),
			toPgText(v.Fix),
			v.Instructions,
		}
	}
	return rows
}

// Helper functions for type conversion

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func fromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}
