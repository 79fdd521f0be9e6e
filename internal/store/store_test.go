package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/mrovalidate/internal/core"
)

// fakeTx records the statements of one transaction. Methods the store does
// not call fall through to the nil embedded interface.
type fakeTx struct {
	pgx.Tx

	execs      []string
	execArgs   [][]any
	copyTable  pgx.Identifier
	copyCols   []string
	copied     [][]any
	execErr    error
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.execs = append(tx.execs, sql)
	tx.execArgs = append(tx.execArgs, args)
	return pgconn.CommandTag{}, tx.execErr
}

func (tx *fakeTx) CopyFrom(_ context.Context, table pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	tx.copyTable = table
	tx.copyCols = cols
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		tx.copied = append(tx.copied, vals)
	}
	return int64(len(tx.copied)), src.Err()
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	DBTX

	tx    *fakeTx
	execs []string
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return db.tx, nil
}

func (db *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	db.execs = append(db.execs, sql)
	return pgconn.CommandTag{}, nil
}

func sampleReport() *core.Report {
	return &core.Report{
		RunID:     uuid.New(),
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:  2 * time.Second,
		Tables:    []core.TableSummary{{Key: "chain"}, {Key: "molecule"}},
		Violations: []core.Violation{
			{ID: 1, Table: "chain", Cell: "D3", Level: core.LevelError, RuleID: core.RuleMissingChainGene, RuleName: "missing chain gene with 'protein' parent", Instructions: "add a 'Gene' from genetic-locus"},
			{ID: 2, Table: "molecule", Cell: "B9", Level: core.LevelError, RuleID: core.RuleUnknownLabel, RuleName: "unknown label", Value: "X protein complex", Instructions: "use a label defined in index"},
		},
	}
}

func TestMigrate(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, New(db).Migrate(context.Background()))

	require.Len(t, db.execs, len(schemaStatements))
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS validation_runs")
	assert.Contains(t, db.execs[1], "validation_violations")
}

func TestSaveRun(t *testing.T) {
	tx := &fakeTx{}
	r := sampleReport()

	require.NoError(t, New(&fakeDB{tx: tx}).SaveRun(context.Background(), r))

	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	require.Len(t, tx.execs, 1)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(tx.execs[0]), "INSERT INTO validation_runs"))
	args := tx.execArgs[0]
	assert.Equal(t, pgtype.UUID{Bytes: r.RunID, Valid: true}, args[0])
	assert.Equal(t, int64(2000), args[2])
	assert.Equal(t, "failed", args[3])
	assert.Equal(t, 2, args[4])
	assert.Equal(t, 2, args[5])

	assert.Equal(t, pgx.Identifier{"validation_violations"}, tx.copyTable)
	assert.Equal(t, violationColumns, tx.copyCols)
	require.Len(t, tx.copied, 2)
	assert.Len(t, tx.copied[0], len(violationColumns))
	assert.Equal(t, int32(1), tx.copied[0][1])
	assert.Equal(t, pgtype.Text{}, tx.copied[0][7], "empty value stored as NULL")
	assert.Equal(t, pgtype.Text{String: "X protein complex", Valid: true}, tx.copied[1][7])
}

func TestSaveRun_CleanSkipsCopy(t *testing.T) {
	tx := &fakeTx{}
	r := sampleReport()
	r.Violations = nil

	require.NoError(t, New(&fakeDB{tx: tx}).SaveRun(context.Background(), r))

	assert.True(t, tx.committed)
	assert.Nil(t, tx.copyTable)
	assert.Equal(t, "clean", tx.execArgs[0][3])
}

func TestSaveRun_InsertErrorRollsBack(t *testing.T) {
	tx := &fakeTx{execErr: errors.New("connection reset")}

	err := New(&fakeDB{tx: tx}).SaveRun(context.Background(), sampleReport())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert run")
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestUUIDConversion(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, fromPgUUID(toPgUUID(id)))
	assert.False(t, toPgUUID(uuid.Nil).Valid)
	assert.Equal(t, uuid.Nil, fromPgUUID(pgtype.UUID{}))
}
