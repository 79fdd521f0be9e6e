package tables

import (
	"regexp"

	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

// Label shapes. Each pattern is anchored on the suffix the table's labels
// must carry.
var (
	locusLabel             = regexp.MustCompile(`^.+ locus$`)
	chainLabel             = regexp.MustCompile(`^.+ chain$`)
	haplotypeLabel         = regexp.MustCompile(`^.+ haplotype$`)
	serotypeLabel          = regexp.MustCompile(`^.+ serotype$`)
	proteinComplexLabel    = regexp.MustCompile(`^.+ protein complex$`)
	haplotypeMoleculeLabel = regexp.MustCompile(`^.+ (with haplotype|with [^ ]+ haplotype)$`)
	serotypeMoleculeLabel  = regexp.MustCompile(`^.+ (with serotype|with [^ ]+ serotype)$`)
)

// taxonRule describes how a table treats its In Taxon column.
type taxonRule struct {
	// required reports whether an absent taxon is a violation for row.
	// Nil means the taxon is always optional.
	required func(row core.Row) bool

	// missingName is the rule name of missing_required_taxon.
	missingName string
}

func taxonOptional() taxonRule {
	return taxonRule{}
}

func taxonAlwaysRequired(name string) taxonRule {
	return taxonRule{
		required:    func(core.Row) bool { return true },
		missingName: name,
	}
}

// taxonRequiredWhen requires a taxon on rows whose trimmed Parent satisfies match.
func taxonRequiredWhen(name string, match func(parent string) bool) taxonRule {
	return taxonRule{
		required: func(row core.Row) bool {
			parent, _ := row.Value(schema.Parent)
			return match(parent)
		},
		missingName: name,
	}
}

// checkTaxon reports absent taxa the rule requires and present taxa that
// are not imported terms.
func checkTaxon(t *core.Table, external core.LabelSet, rule taxonRule) []core.Violation {
	var violations []core.Violation
	for _, row := range t.Rows {
		taxon, present := row.Value(schema.InTaxon)

		if !present {
			if rule.required != nil && rule.required(row) {
				violations = append(violations, core.NewViolation(t, row, schema.InTaxon,
					core.RuleMissingRequiredTaxon,
					rule.missingName,
					"",
					"add a taxon from 'external'",
				))
			}
			continue
		}

		if !external.Contains(taxon) {
			violations = append(violations, core.NewViolation(t, row, schema.InTaxon,
				core.RuleInvalidTaxon,
				"invalid taxon",
				taxon,
				"add this taxon to 'external' or replace it with a taxon from 'external'",
			))
		}
	}
	return violations
}

// collect joins the violation batches of a rule set in rule order.
func collect(batches ...[]core.Violation) []core.Violation {
	var out []core.Violation
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}
