// Package report writes validation reports.
//
// The TSV form is the error table consumed by the ontology build: one header
// row, then one row per violation in report order. JSON and YAML carry the
// whole run, including table summaries.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/mrovalidate/internal/core"
)

// Format is an output encoding.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Columns is the fixed header of the TSV error table.
var Columns = []string{
	"ID",
	"table",
	"cell",
	"level",
	"rule ID",
	"rule name",
	"value",
	"fix",
	"instructions",
}

// ParseFormat converts a name to a Format. Names are case-insensitive and
// "yml" is accepted for YAML. An empty name means TSV.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "tsv":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want tsv, json or yaml)", name)
	}
}

// FormatForPath guesses the format from a file extension, defaulting to TSV.
func FormatForPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatTSV
	}
	return f
}

// ContentType returns the HTTP content type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/tab-separated-values"
	}
}

// Record returns the TSV fields of v in column order.
func Record(v core.Violation) []string {
	return []string{
		strconv.Itoa(v.ID),
		v.Table,
		v.Cell,
		string(v.Level),
		v.RuleID,
		v.RuleName,
		v.Value,
		v.Fix,
		v.Instructions,
	}
}

// WriteTSV writes the error table. A run without violations still gets the
// header row.
//
// Fields are quoted only when they hold a tab, a double quote or a line
// break. Leading spaces are written as-is, so labels round-trip unchanged
// through the ROBOT toolchain.
func WriteTSV(w io.Writer, violations []core.Violation) error {
	bw := bufio.NewWriter(w)

	if err := writeRecord(bw, Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, v := range violations {
		if err := writeRecord(bw, Record(v)); err != nil {
			return fmt.Errorf("write violation %d: %w", v.ID, err)
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte('\t'); err != nil {
				return err
			}
		}
		if !needsQuotes(field) {
			if _, err := w.WriteString(field); err != nil {
				return err
			}
			continue
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func needsQuotes(field string) bool {
	return strings.ContainsAny(field, "\t\"\r\n")
}

// WriteJSON writes the whole report as indented JSON.
func WriteJSON(w io.Writer, r *core.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes the whole report as YAML.
func WriteYAML(w io.Writer, r *core.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// Write encodes r in format f.
func Write(w io.Writer, f Format, r *core.Report) error {
	switch f {
	case FormatTSV, "":
		return WriteTSV(w, r.Violations)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// WriteFile writes r to path, creating parent directories as needed. The
// report is written to a temporary file first so readers never observe a
// partial table.
func WriteFile(path string, f Format, r *core.Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, f, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("set report permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace report file: %w", err)
	}
	return nil
}
