package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerChain()
}

func registerChain() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableChain,
			Label: "Chains",
			Order: orderChain,
		},
		FieldSpecs: schema.ChainFieldSpecs,
		DependsOn:  []string{schema.TableGeneticLocus},
		Validate:   validateChain,
	})
}

// validateChain checks that:
//   - labels are in the index and end with " chain"
//   - every parent is a chain from this table or "protein"
//   - chains under "protein" name a Gene, and any Gene is a genetic locus
func validateChain(t *core.Table, in core.Inputs) core.Result {
	labels, labelErrs := core.CheckLabels(t, schema.TableIndex, in.IndexLabels(), chainLabel)

	parentErrs := core.CheckField(t, core.FieldCheck{
		Valid:   core.NewLabelSet(labels...),
		TopTerm: "protein",
	})

	return core.Result{
		Labels:     labels,
		Violations: collect(labelErrs, parentErrs, checkChainGene(t, in.Labels(schema.TableGeneticLocus))),
	}
}

func checkChainGene(t *core.Table, loci core.LabelSet) []core.Violation {
	var violations []core.Violation
	for _, row := range t.Rows {
		gene, present := row.Value(schema.Gene)
		if !present {
			if parent, _ := row.Value(schema.Parent); parent == "protein" {
				violations = append(violations, core.NewViolation(t, row, schema.Gene,
					core.RuleMissingChainGene,
					"missing chain gene with 'protein' parent",
					"",
					"add a 'Gene' from genetic-locus",
				))
			}
			continue
		}
		if !loci.Contains(gene) {
			violations = append(violations, core.NewViolation(t, row, schema.Gene,
				core.RuleInvalidChainGene,
				"invalid chain gene",
				gene,
				"replace the 'Gene' with a term from genetic-locus",
			))
		}
	}
	return violations
}
