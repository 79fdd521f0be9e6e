package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerHaplotype()
}

func registerHaplotype() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableHaplotype,
			Label: "Haplotypes",
			Order: orderHaplotype,
		},
		FieldSpecs: schema.HaplotypeFieldSpecs,
		Validate:   validateHaplotype,
	})
}

var haplotypeTaxon = taxonRequiredWhen(
	"missing required taxon for 'MHC haplotype' parent",
	func(parent string) bool { return parent == "MHC haplotype" },
)

// validateHaplotype checks that:
//   - labels are in the index and end with " haplotype"
//   - every parent is a haplotype from this table or "MHC haplotype"
//   - haplotypes directly under "MHC haplotype" have a taxon
//   - any taxon is an imported term
func validateHaplotype(t *core.Table, in core.Inputs) core.Result {
	labels, labelErrs := core.CheckLabels(t, schema.TableIndex, in.IndexLabels(), haplotypeLabel)

	parentErrs := core.CheckField(t, core.FieldCheck{
		Valid:   core.NewLabelSet(labels...),
		TopTerm: "MHC haplotype",
	})

	return core.Result{
		Labels:     labels,
		Violations: collect(labelErrs, parentErrs, checkTaxon(t, in.External, haplotypeTaxon)),
	}
}
