package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

// TableInfo contains display information about a table.
type TableInfo struct {
	Key   string // Unique identifier and report table name: "molecule"
	Label string // Display name: "Molecules"
	File  string // File name inside the template directory: "molecule.tsv"
	Order int    // Position in processing and report order
}

// Inputs are the label sets a table's rule set may resolve references
// against. Upstream label sets are only present for declared dependencies.
type Inputs struct {
	Index    *Index
	External LabelSet

	upstream map[string]LabelSet
}

// NewInputs returns inputs holding the given upstream label sets.
func NewInputs(index *Index, external LabelSet, upstream map[string]LabelSet) Inputs {
	return Inputs{Index: index, External: external, upstream: upstream}
}

// IndexLabels returns every label in the global index.
func (in Inputs) IndexLabels() LabelSet {
	if in.Index == nil {
		return nil
	}
	return in.Index.Labels()
}

// Labels returns the label set published by table key.
// A table that was not declared as a dependency yields an empty set.
func (in Inputs) Labels(key string) LabelSet {
	return in.upstream[key]
}

// Result is what a table's rule set produces.
type Result struct {
	Labels     []string    // Every label in the table, valid or not
	Violations []Violation // Unnumbered, in rule order
}

// ValidateFunc runs a table's rule set over its loaded rows.
type ValidateFunc func(t *Table, in Inputs) Result

// TableDefinition contains everything needed to validate a table.
type TableDefinition struct {
	Info       TableInfo
	FieldSpecs []schema.FieldSpec
	DependsOn  []string // Keys of tables whose labels this table resolves against
	Validate   ValidateFunc
}

// TableSummary describes one validated table in a run report.
type TableSummary struct {
	Key        string `json:"key" yaml:"key"`
	Path       string `json:"path" yaml:"path"`
	Rows       int    `json:"rows" yaml:"rows"`
	Labels     int    `json:"labels" yaml:"labels"`
	Violations int    `json:"violations" yaml:"violations"`
}

// Report is the result of a validation run.
type Report struct {
	RunID      uuid.UUID      `json:"runId" yaml:"run_id"`
	StartedAt  time.Time      `json:"startedAt" yaml:"started_at"`
	Duration   time.Duration  `json:"duration" yaml:"duration"`
	Tables     []TableSummary `json:"tables" yaml:"tables"`
	Violations []Violation    `json:"violations" yaml:"violations"`
}

// Clean reports whether the run produced no violations.
func (r *Report) Clean() bool {
	return len(r.Violations) == 0
}

// ViolationCount returns the number of violations in the report.
func (r *Report) ViolationCount() int {
	return len(r.Violations)
}

// Outcome returns "clean" or "failed".
func (r *Report) Outcome() string {
	if r.Clean() {
		return "clean"
	}
	return "failed"
}
