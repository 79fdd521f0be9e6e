package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerGeneticLocus()
}

func registerGeneticLocus() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableGeneticLocus,
			Label: "Genetic Loci",
			Order: orderGeneticLocus,
		},
		FieldSpecs: schema.GeneticLocusFieldSpecs,
		Validate:   validateGeneticLocus,
	})
}

// validateGeneticLocus checks that:
//   - labels are in the index and end with " locus"
//   - every parent is a locus from this table or "MHC locus"
//   - any taxon is an imported term
func validateGeneticLocus(t *core.Table, in core.Inputs) core.Result {
	labels, labelErrs := core.CheckLabels(t, schema.TableIndex, in.IndexLabels(), locusLabel)

	parentErrs := core.CheckField(t, core.FieldCheck{
		Valid:   core.NewLabelSet(labels...),
		TopTerm: "MHC locus",
	})

	return core.Result{
		Labels:     labels,
		Violations: collect(labelErrs, parentErrs, checkTaxon(t, in.External, taxonOptional())),
	}
}
