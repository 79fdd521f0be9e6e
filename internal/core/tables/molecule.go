package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerMolecule()
}

func registerMolecule() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableMolecule,
			Label: "Molecules",
			Order: orderMolecule,
		},
		FieldSpecs: schema.MoleculeFieldSpecs,
		DependsOn:  []string{schema.TableChain, schema.TableHaplotype, schema.TableSerotype},
		Validate:   validateMolecule,
	})
}

var moleculeTaxon = taxonRequiredWhen(
	"missing required taxon for parent other than 'MHC protein complex'",
	func(parent string) bool { return parent != "MHC protein complex" },
)

// validateMolecule checks that:
//   - labels are in the index and end with " protein complex"
//   - every parent is a molecule from this table or "MHC protein complex"
//   - Alpha Chain and Beta Chain name chains, or Beta-2-microglobulin for Beta Chain
//   - With Haplotype and With Serotype name a haplotype and a serotype
//   - the restriction level is one of the molecule levels
//   - molecules not directly under "MHC protein complex" have a taxon
//   - any taxon is an imported term
func validateMolecule(t *core.Table, in core.Inputs) core.Result {
	labels, labelErrs := core.CheckLabels(t, schema.TableIndex, in.IndexLabels(), proteinComplexLabel)

	chains := in.Labels(schema.TableChain)

	return core.Result{
		Labels: labels,
		Violations: collect(
			labelErrs,
			core.CheckField(t, core.FieldCheck{
				Valid:   core.NewLabelSet(labels...),
				TopTerm: "MHC protein complex",
			}),
			core.CheckField(t, core.FieldCheck{
				Field:    schema.AlphaChain,
				Valid:    chains,
				Source:   schema.TableChain,
				Optional: true,
			}),
			core.CheckField(t, core.FieldCheck{
				Field:    schema.BetaChain,
				Valid:    chains,
				TopTerm:  "Beta-2-microglobulin",
				Source:   schema.TableChain,
				Optional: true,
			}),
			core.CheckField(t, core.FieldCheck{
				Field:    schema.WithHaplotype,
				Valid:    in.Labels(schema.TableHaplotype),
				Source:   schema.TableHaplotype,
				Optional: true,
			}),
			core.CheckField(t, core.FieldCheck{
				Field:    schema.WithSerotype,
				Valid:    in.Labels(schema.TableSerotype),
				Source:   schema.TableSerotype,
				Optional: true,
			}),
			core.CheckRestrictionLevel(t, schema.MoleculeFieldSpecs),
			checkTaxon(t, in.External, moleculeTaxon),
		),
	}
}
