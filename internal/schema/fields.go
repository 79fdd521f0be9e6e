// Package schema declares the columns each ontology table is expected to carry.
//
// Rule sets refer to columns through the constants below rather than string
// literals, and the loader checks every table header against its field specs
// before validation starts, so a misspelled column is rejected at load time.
package schema

// Column is the header name of a table column, exactly as it appears in the
// first row of the TSV file.
type Column string

// Columns shared across the ontology tables.
const (
	ID               Column = "ID"
	Label            Column = "Label"
	Parent           Column = "Parent"
	InTaxon          Column = "In Taxon"
	Gene             Column = "Gene"
	AlphaChain       Column = "Alpha Chain"
	BetaChain        Column = "Beta Chain"
	WithHaplotype    Column = "With Haplotype"
	WithSerotype     Column = "With Serotype"
	RestrictionLevel Column = "Restriction Level"
	MutantOf         Column = "Mutant Of"
)

// FieldSpec describes a single column of an ontology table.
type FieldSpec struct {
	Name       Column   // Column header name (must match the TSV exactly)
	Required   bool     // Column must exist in the TSV header
	EnumValues []string // Closed set of accepted values, if any
}

// Names returns the column names of specs in declaration order.
func Names(specs []FieldSpec) []Column {
	names := make([]Column, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the spec for col.
func Lookup(specs []FieldSpec, col Column) (FieldSpec, bool) {
	for _, s := range specs {
		if s.Name == col {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// EnumValues returns the accepted values declared for col in specs, or nil
// if col is absent or not an enumeration.
func EnumValues(specs []FieldSpec, col Column) []string {
	s, ok := Lookup(specs, col)
	if !ok {
		return nil
	}
	return s.EnumValues
}
