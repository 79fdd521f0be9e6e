package core

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func countRule(vs []Violation, ruleID string) int {
	n := 0
	for _, v := range vs {
		if v.RuleID == ruleID {
			n++
		}
	}
	return n
}

func labelTable(labels ...string) *Table {
	rows := make([]map[schema.Column]string, len(labels))
	for i, l := range labels {
		rows[i] = map[schema.Column]string{schema.Label: l}
	}
	return NewTable("chain", []schema.Column{schema.ID, schema.Label}, rows...)
}

func TestCheckLabels(t *testing.T) {
	valid := NewLabelSet("X chain")
	shape := regexp.MustCompile(`^.+ chain$`)

	tests := []struct {
		label       string
		wantUnknown int
		wantInvalid int
	}{
		{"X chain", 0, 0},
		{"Y chain", 1, 0},
		{"X", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			labels, vs := CheckLabels(labelTable(tt.label), "index", valid, shape)

			assert.Equal(t, []string{tt.label}, labels)
			assert.Equal(t, tt.wantUnknown, countRule(vs, RuleUnknownLabel), "unknown_label")
			assert.Equal(t, tt.wantInvalid, countRule(vs, RuleInvalidLabel), "invalid_label")
		})
	}
}

func TestCheckLabels_Details(t *testing.T) {
	tbl := labelTable("A chain", "B", "C chain")
	labels, vs := CheckLabels(tbl, "index", NewLabelSet("A chain", "B"), regexp.MustCompile(`^.+ chain$`))

	assert.Equal(t, []string{"A chain", "B", "C chain"}, labels)
	require.Len(t, vs, 2)

	invalid := vs[0]
	assert.Equal(t, RuleInvalidLabel, invalid.RuleID)
	assert.Equal(t, "B4", invalid.Cell)
	assert.Equal(t, "B", invalid.Value)
	assert.Equal(t, "change label to match pattern '^.+ chain$'", invalid.Instructions)

	unknown := vs[1]
	assert.Equal(t, RuleUnknownLabel, unknown.RuleID)
	assert.Equal(t, "B5", unknown.Cell)
	assert.Equal(t, "unknown label", unknown.RuleName)
	assert.Equal(t, "use a label defined in index", unknown.Instructions)
	assert.Equal(t, LevelError, unknown.Level)
	assert.Zero(t, unknown.ID)
	assert.Equal(t, "chain", unknown.Table)
}

func TestCheckLabels_NoShape(t *testing.T) {
	_, vs := CheckLabels(labelTable("anything"), "chain", NewLabelSet("anything"), nil)
	assert.Empty(t, vs)
}

func parentTable(values ...string) *Table {
	rows := make([]map[schema.Column]string, len(values))
	for i, v := range values {
		rows[i] = map[schema.Column]string{schema.Label: "L", schema.Parent: v}
	}
	return NewTable("genetic-locus", []schema.Column{schema.ID, schema.Label, schema.Parent}, rows...)
}

func TestCheckField(t *testing.T) {
	valid := NewLabelSet("A locus")

	tests := []struct {
		name        string
		value       string
		optional    bool
		wantMissing int
		wantInvalid int
	}{
		{"required empty", "", false, 1, 0},
		{"required whitespace", "   ", false, 1, 0},
		{"optional empty", "", true, 0, 0},
		{"top term", "MHC locus", false, 0, 0},
		{"member", "A locus", false, 0, 0},
		{"member with padding", " A locus ", false, 0, 0},
		{"not a member", "B locus", false, 0, 1},
		{"optional not a member", "B locus", true, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := CheckField(parentTable(tt.value), FieldCheck{
				Valid:    valid,
				TopTerm:  "MHC locus",
				Optional: tt.optional,
			})
			assert.Equal(t, tt.wantMissing, countRule(vs, "missing_required_parent"), "missing_required_parent")
			assert.Equal(t, tt.wantInvalid, countRule(vs, "invalid_parent"), "invalid_parent")
		})
	}
}

func TestCheckField_Messages(t *testing.T) {
	tbl := NewTable("molecule", []schema.Column{schema.Label, schema.Parent, schema.WithHaplotype},
		map[schema.Column]string{schema.WithHaplotype: ""},
		map[schema.Column]string{schema.WithHaplotype: "HLA-X haplotype "},
	)

	vs := CheckField(tbl, FieldCheck{Field: schema.WithHaplotype, Source: "haplotype"})
	require.Len(t, vs, 2)

	missing := vs[0]
	assert.Equal(t, "missing_required_with_haplotype", missing.RuleID)
	assert.Equal(t, "missing required 'With Haplotype'", missing.RuleName)
	assert.Equal(t, "add a 'With Haplotype' term", missing.Instructions)
	assert.Empty(t, missing.Value)
	assert.Equal(t, "C3", missing.Cell)

	invalid := vs[1]
	assert.Equal(t, "invalid_with_haplotype", invalid.RuleID)
	assert.Equal(t, "invalid 'With Haplotype'", invalid.RuleName)
	assert.Equal(t, "replace the 'With Haplotype' with a term from haplotype", invalid.Instructions)
	assert.Equal(t, "HLA-X haplotype", invalid.Value)
	assert.Equal(t, "C4", invalid.Cell)
}

func TestCheckField_DefaultSource(t *testing.T) {
	vs := CheckField(parentTable("nope"), FieldCheck{})
	require.Len(t, vs, 1)
	assert.Equal(t, "replace the 'Parent' with a term from genetic-locus", vs[0].Instructions)
}

func TestCheckRestrictionLevel(t *testing.T) {
	specs := []schema.FieldSpec{
		{Name: schema.Label, Required: true},
		{Name: schema.RestrictionLevel, Required: true, EnumValues: []string{"class", "locus"}},
	}
	tbl := NewTable("molecule", []schema.Column{schema.Label, schema.Parent, schema.RestrictionLevel},
		map[schema.Column]string{schema.RestrictionLevel: "class"},
		map[schema.Column]string{schema.RestrictionLevel: "Class"},
		map[schema.Column]string{schema.RestrictionLevel: "locus"},
		map[schema.Column]string{schema.RestrictionLevel: ""},
	)

	vs := CheckRestrictionLevel(tbl, specs)
	require.Len(t, vs, 2)

	assert.Equal(t, "C4", vs[0].Cell)
	assert.Equal(t, "Class", vs[0].Value)
	assert.Equal(t, "C6", vs[1].Cell)
	assert.Equal(t, "change the restriction level to one of: class, locus", vs[0].Instructions)
	assert.Equal(t, RuleInvalidRestrictionLevel, vs[0].RuleID)
	assert.Equal(t, "invalid restriction level", vs[0].RuleName)
}

func TestCheckRestrictionLevel_FromFieldSpecs(t *testing.T) {
	tests := []struct {
		name  string
		specs []schema.FieldSpec
		level string
		want  int
	}{
		{"molecule accepts locus", schema.MoleculeFieldSpecs, "locus", 0},
		{"mutant rejects locus", schema.MutantMoleculeFieldSpecs, "locus", 1},
		{"haplotype molecule", schema.HaplotypeMoleculeFieldSpecs, "haplotype", 0},
		{"serotype is case-sensitive", schema.SerotypeMoleculeFieldSpecs, "Serotype", 1},
		{"no enumerated levels", schema.ChainFieldSpecs, "class", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable("molecule", []schema.Column{schema.Label, schema.RestrictionLevel},
				map[schema.Column]string{schema.RestrictionLevel: tt.level},
			)
			assert.Len(t, CheckRestrictionLevel(tbl, tt.specs), tt.want)
		})
	}
}
