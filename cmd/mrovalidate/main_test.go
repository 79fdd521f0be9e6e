package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/mrovalidate/internal/config"
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/report"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func header(specs []schema.FieldSpec) string {
	names := make([]string, 0, len(specs))
	for _, c := range schema.Names(specs) {
		names = append(names, string(c))
	}
	return strings.Join(names, "\t")
}

func writeTable(t *testing.T, path string, specs []schema.FieldSpec, rows ...string) {
	t.Helper()
	h := header(specs)
	content := h + "\n" + h + "\n"
	for _, r := range rows {
		content += r + "\n"
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// emptyOntology writes every input with headers only and returns the four
// positional arguments.
func emptyOntology(t *testing.T) []string {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	dir := t.TempDir()
	index := filepath.Join(dir, "index.tsv")
	templates := filepath.Join(dir, "ontology")
	iedb := filepath.Join(dir, "iedb", "iedb.tsv")
	out := filepath.Join(dir, "build", "errors.tsv")

	writeTable(t, index, schema.IndexFieldSpecs)
	writeTable(t, filepath.Join(templates, "external.tsv"), schema.ExternalFieldSpecs)
	for _, def := range core.All() {
		path := filepath.Join(templates, def.Info.File)
		if def.Info.Key == schema.TableIEDB {
			path = iedb
		}
		writeTable(t, path, def.FieldSpecs)
	}
	return []string{index, iedb, templates, out}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), append([]string{"--log-level", "error"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecute_Version(t *testing.T) {
	code, out, _ := run(t, "version")

	assert.Equal(t, exitClean, code)
	assert.Contains(t, out, "mrovalidate version")
}

func TestExecute_Tables(t *testing.T) {
	code, out, _ := run(t, "tables")

	require.Equal(t, exitClean, code)
	assert.Contains(t, out, "STAGE")
	for _, key := range core.Keys() {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, "Label, Parent, Alpha Chain")
}

func TestExecute_TablesDescribe(t *testing.T) {
	code, out, _ := run(t, "tables", schema.TableMutantMolecule)

	require.Equal(t, exitClean, code)
	assert.Contains(t, out, "mutant-molecule.tsv")
	assert.Contains(t, out, "class, complete molecule, partial molecule")
	assert.NotContains(t, out, "locus")
}

func TestExecute_TablesUnknown(t *testing.T) {
	code, _, errOut := run(t, "tables", "nope")

	assert.Equal(t, exitFault, code)
	assert.Contains(t, errOut, "TBL001")
	assert.Contains(t, errOut, "known tables: iedb, genetic-locus")
}

func TestExecute_Clean(t *testing.T) {
	args := emptyOntology(t)

	code, out, errOut := run(t, append([]string{"validate"}, args...)...)

	require.Equal(t, exitClean, code, errOut)
	assert.NotContains(t, out, "ERROR")

	data, err := os.ReadFile(args[3])
	require.NoError(t, err)
	assert.Equal(t, strings.Join(report.Columns, "\t")+"\n", string(data))
}

func TestExecute_RootActsAsValidate(t *testing.T) {
	args := emptyOntology(t)

	code, _, errOut := run(t, args...)

	assert.Equal(t, exitClean, code, errOut)
}

func TestExecute_Violations(t *testing.T) {
	args := emptyOntology(t)
	def, ok := core.Get(schema.TableMolecule)
	require.True(t, ok)
	row := make([]string, len(def.FieldSpecs))
	for i, s := range def.FieldSpecs {
		if s.Name == schema.Label {
			row[i] = "bogus protein complex"
		}
	}
	writeTable(t, filepath.Join(args[2], def.Info.File), def.FieldSpecs, strings.Join(row, "\t"))

	code, out, _ := run(t, append([]string{"validate"}, args...)...)

	assert.Equal(t, exitViolations, code)
	assert.Contains(t, out, "ERROR: Validation failed with")

	data, err := os.ReadFile(args[3])
	require.NoError(t, err)
	assert.Contains(t, string(data), "unknown_label")
}

func TestExecute_MissingTable(t *testing.T) {
	args := emptyOntology(t)
	require.NoError(t, os.Remove(filepath.Join(args[2], "chain.tsv")))

	code, _, errOut := run(t, append([]string{"validate"}, args...)...)

	assert.Equal(t, exitFault, code)
	assert.Contains(t, errOut, "FILE001")
}

func TestExecute_BadArgs(t *testing.T) {
	code, _, errOut := run(t, "validate", "only", "two")

	assert.Equal(t, exitFault, code)
	assert.Contains(t, errOut, "expected 0 or 4 arguments")
}

func TestReportFormat(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		cfgFmt  string
		flag    string
		flagSet bool
		want    report.Format
	}{
		{"config default", "build/errors.tsv", "tsv", "", false, report.FormatTSV},
		{"extension wins over config", "build/errors.json", "tsv", "", false, report.FormatJSON},
		{"config used for tsv path", "build/errors.tsv", "yaml", "", false, report.FormatYAML},
		{"flag wins", "build/errors.json", "tsv", "yaml", true, report.FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Paths:      config.PathsConfig{Report: tt.path},
				Validation: config.ValidationConfig{Format: tt.cfgFmt},
			}
			got, err := reportFormat(cfg, tt.flag, tt.flagSet)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
