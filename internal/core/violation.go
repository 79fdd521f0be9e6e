package core

// violation.go defines the records written to the error report and the
// collector that numbers them.
//
// Rules never assign IDs. Each table's rules return an unnumbered batch, and
// the orchestrator appends batches to a single Collector in canonical table
// order once every table has finished. IDs are therefore strictly increasing
// across the report and independent of which goroutine finished first.

import (
	"sync"

	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

// Level is the severity of a violation.
type Level string

// LevelError is the only level the rule sets emit.
const LevelError Level = "error"

// Rule identifiers with a fixed name. Field rules derive theirs from the
// column: missing_required_<field> and invalid_<field>.
const (
	RuleUnknownLabel            = "unknown_label"
	RuleInvalidLabel            = "invalid_label"
	RuleInvalidRestrictionLevel = "invalid_restriction_level"
	RuleMissingChainGene        = "missing_chain_gene"
	RuleInvalidChainGene        = "invalid_chain_gene"
	RuleMissingRequiredTaxon    = "missing_required_taxon"
	RuleInvalidTaxon            = "invalid_taxon"
)

// Violation is one row of the error report.
type Violation struct {
	ID           int    `json:"id" yaml:"id"`
	Table        string `json:"table" yaml:"table"`
	Cell         string `json:"cell" yaml:"cell"`
	Level        Level  `json:"level" yaml:"level"`
	RuleID       string `json:"ruleId" yaml:"rule_id"`
	RuleName     string `json:"ruleName" yaml:"rule_name"`
	Value        string `json:"value,omitempty" yaml:"value,omitempty"`
	Fix          string `json:"fix,omitempty" yaml:"fix,omitempty"`
	Instructions string `json:"instructions" yaml:"instructions"`
}

// NewViolation builds an unnumbered error-level violation for the cell at
// (row, col) of t.
func NewViolation(t *Table, row Row, col schema.Column, ruleID, ruleName, value, instructions string) Violation {
	return Violation{
		Table:        t.Name,
		Cell:         t.Address(row, col),
		Level:        LevelError,
		RuleID:       ruleID,
		RuleName:     ruleName,
		Value:        value,
		Instructions: instructions,
	}
}

// Collector owns the run-wide violation counter.
// It is safe for concurrent use, although the orchestrator only appends from
// one goroutine so that ordering stays deterministic.
type Collector struct {
	mu         sync.Mutex
	next       int
	violations []Violation
}

// NewCollector returns an empty collector whose first ID is 1.
func NewCollector() *Collector {
	return &Collector{next: 1}
}

// Append numbers vs in order and adds them to the collector.
func (c *Collector) Append(vs ...Violation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next == 0 {
		c.next = 1
	}
	for _, v := range vs {
		v.ID = c.next
		c.next++
		c.violations = append(c.violations, v)
	}
}

// Violations returns a copy of the collected violations in ID order.
func (c *Collector) Violations() []Violation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Violation, len(c.violations))
	copy(out, c.violations)
	return out
}

// Len returns the number of collected violations.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.violations)
}
