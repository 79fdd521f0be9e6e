package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerHaplotypeMolecule()
}

func registerHaplotypeMolecule() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableHaplotypeMolecule,
			Label: "Haplotype Molecules",
			Order: orderHaplotypeMolecule,
		},
		FieldSpecs: schema.HaplotypeMoleculeFieldSpecs,
		DependsOn:  []string{schema.TableMolecule, schema.TableHaplotype},
		Validate:   validateHaplotypeMolecule,
	})
}

// validateHaplotypeMolecule checks that:
//   - labels are in the index and end with "with haplotype" or "with <X> haplotype"
//   - every parent is a molecule
//   - every row names a haplotype
//   - the restriction level is "haplotype"
//   - every row has a taxon that is an imported term
func validateHaplotypeMolecule(t *core.Table, in core.Inputs) core.Result {
	labels, labelErrs := core.CheckLabels(t, schema.TableIndex, in.IndexLabels(), haplotypeMoleculeLabel)

	return core.Result{
		Labels: labels,
		Violations: collect(
			labelErrs,
			core.CheckField(t, core.FieldCheck{
				Valid:   in.Labels(schema.TableMolecule),
				TopTerm: "MHC protein complex",
				Source:  schema.TableMolecule,
			}),
			core.CheckField(t, core.FieldCheck{
				Field:   schema.WithHaplotype,
				Valid:   in.Labels(schema.TableHaplotype),
				TopTerm: "MHC haplotype",
				Source:  schema.TableHaplotype,
			}),
			core.CheckRestrictionLevel(t, schema.HaplotypeMoleculeFieldSpecs),
			checkTaxon(t, in.External, taxonAlwaysRequired("missing required taxon")),
		),
	}
}
