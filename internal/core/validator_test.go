package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func writeTSV(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

var labelOnly = []schema.FieldSpec{{Name: schema.Label, Required: true}}

var labelParent = []schema.FieldSpec{
	{Name: schema.Label, Required: true},
	{Name: schema.Parent, Required: true},
}

// testDefinitions models a two-level hierarchy: "kind" rows define labels,
// "item" rows must name a kind as their parent.
func testDefinitions() []TableDefinition {
	return []TableDefinition{
		{
			Info:       TableInfo{Key: "item", File: "item.tsv", Order: 20},
			FieldSpecs: labelParent,
			DependsOn:  []string{"kind"},
			Validate: func(t *Table, in Inputs) Result {
				labels, vs := CheckLabels(t, "index", in.IndexLabels(), nil)
				vs = append(vs, CheckField(t, FieldCheck{Valid: in.Labels("kind"), Source: "kind"})...)
				return Result{Labels: labels, Violations: vs}
			},
		},
		{
			Info:       TableInfo{Key: "kind", File: "kind.tsv", Order: 10},
			FieldSpecs: labelOnly,
			Validate: func(t *Table, in Inputs) Result {
				labels, vs := CheckLabels(t, "index", in.IndexLabels(), regexp.MustCompile(`^.+ kind$`))
				return Result{Labels: labels, Violations: vs}
			},
		},
	}
}

func writeFixtures(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	src := Sources{
		IndexPath:   filepath.Join(dir, "index.tsv"),
		TemplateDir: filepath.Join(dir, "templates"),
	}
	writeTSV(t, src.IndexPath,
		"ID\tLabel\tType",
		"ID\tLABEL\tTYPE",
		"MRO:1\tA kind\towl:Class",
		"MRO:2\tB\towl:Class",
		"MRO:3\tx item\towl:Class",
	)
	writeTSV(t, src.ExternalPath(),
		"ID\tLabel",
		"ID\tLABEL",
		"NCBITaxon:9606\thuman",
	)
	writeTSV(t, filepath.Join(src.TemplateDir, "kind.tsv"),
		"Label",
		"LABEL",
		"A kind",
		"B",
	)
	writeTSV(t, filepath.Join(src.TemplateDir, "item.tsv"),
		"Label\tParent",
		"LABEL\tSC %",
		"x item\tA kind",
		"y item\tB",
		"z item\tC kind",
		"x item\t",
	)
	return src
}

func quietValidator(opts ...Option) *Validator {
	opts = append([]Option{
		WithDefinitions(testDefinitions()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return NewValidator(opts...)
}

func TestValidator_Run(t *testing.T) {
	src := writeFixtures(t)

	report, err := quietValidator().Run(context.Background(), src)
	require.NoError(t, err)

	type brief struct {
		ID     int
		Table  string
		Cell   string
		RuleID string
	}
	var got []brief
	for _, v := range report.Violations {
		got = append(got, brief{v.ID, v.Table, v.Cell, v.RuleID})
	}
	want := []brief{
		{1, "kind", "A4", RuleInvalidLabel},
		{2, "item", "A4", RuleUnknownLabel},
		{3, "item", "A5", RuleUnknownLabel},
		{4, "item", "B5", "invalid_parent"},
		{5, "item", "B6", "missing_required_parent"},
	}
	assert.Equal(t, want, got)

	assert.False(t, report.Clean())
	assert.Equal(t, "failed", report.Outcome())
	require.Len(t, report.Tables, 2)
	assert.Equal(t, "kind", report.Tables[0].Key)
	assert.Equal(t, 4, report.Tables[1].Rows)
}

func TestValidator_Idempotent(t *testing.T) {
	src := writeFixtures(t)

	first, err := quietValidator(WithConcurrency(1)).Run(context.Background(), src)
	require.NoError(t, err)
	second, err := quietValidator(WithConcurrency(8)).Run(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, first.Violations, second.Violations)
	assert.NotEqual(t, first.RunID, second.RunID, "run IDs should be unique")
}

func TestValidator_IDsStrictlyIncreasing(t *testing.T) {
	src := writeFixtures(t)
	report, err := quietValidator().Run(context.Background(), src)
	require.NoError(t, err)

	for i := 1; i < len(report.Violations); i++ {
		require.Greater(t, report.Violations[i].ID, report.Violations[i-1].ID)
	}
}

func TestValidator_MissingTable(t *testing.T) {
	src := writeFixtures(t)
	require.NoError(t, os.Remove(filepath.Join(src.TemplateDir, "item.tsv")))

	_, err := quietValidator().Run(context.Background(), src)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestValidator_MissingIndex(t *testing.T) {
	src := writeFixtures(t)
	src.IndexPath = filepath.Join(t.TempDir(), "nope.tsv")

	_, err := quietValidator().Run(context.Background(), src)
	var le *LoadError
	require.True(t, errors.As(err, &le), "error = %v", err)
	assert.Equal(t, schema.TableIndex, le.Table)
}

func TestValidator_Cancelled(t *testing.T) {
	src := writeFixtures(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quietValidator().Run(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSources_PathFor(t *testing.T) {
	src := Sources{TemplateDir: "tpl", IEDBPath: "iedb/iedb.tsv"}

	assert.Equal(t, filepath.Join("tpl", "chain.tsv"), src.PathFor(TableInfo{Key: "chain", File: "chain.tsv"}))
	assert.Equal(t, "iedb/iedb.tsv", src.PathFor(TableInfo{Key: schema.TableIEDB}))

	src.IEDBPath = ""
	assert.Equal(t, filepath.Join("tpl", "iedb.tsv"), src.PathFor(TableInfo{Key: schema.TableIEDB}))
}
