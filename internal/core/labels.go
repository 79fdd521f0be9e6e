package core

import (
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

// LabelSet is a set of ontology labels.
type LabelSet map[string]struct{}

// NewLabelSet returns a set containing labels.
func NewLabelSet(labels ...string) LabelSet {
	s := make(LabelSet, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// Contains reports whether label is in the set. A nil set contains nothing.
func (s LabelSet) Contains(label string) bool {
	_, ok := s[label]
	return ok
}

// Len returns the number of labels in the set.
func (s LabelSet) Len() int {
	return len(s)
}

// LabelsOf returns every value of the Label column of t, in row order.
func LabelsOf(t *Table) []string {
	labels := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		labels[i] = row.Get(schema.Label)
	}
	return labels
}

// Index is the global registry of every defined ontology label. Only the
// Label column is read.
type Index struct {
	rows   int
	labels LabelSet
}

// NewIndex builds an index from the rows of the index table. A label may
// appear on more than one row.
func NewIndex(t *Table) *Index {
	return &Index{rows: t.Len(), labels: NewLabelSet(LabelsOf(t)...)}
}

// Labels returns the set of every label in the index.
func (idx *Index) Labels() LabelSet {
	return idx.labels
}

// Len returns the number of index rows.
func (idx *Index) Len() int {
	return idx.rows
}
