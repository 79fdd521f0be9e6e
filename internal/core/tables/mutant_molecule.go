package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerMutantMolecule()
}

func registerMutantMolecule() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableMutantMolecule,
			Label: "Mutant Molecules",
			Order: orderMutantMolecule,
		},
		FieldSpecs: schema.MutantMoleculeFieldSpecs,
		DependsOn:  []string{schema.TableMolecule},
		Validate:   validateMutantMolecule,
	})
}

func validateMutantMolecule(t *core.Table, in core.Inputs) core.Result {
	labels, labelErrs := core.CheckLabels(t, schema.TableIndex, in.IndexLabels(), proteinComplexLabel)

	return core.Result{
		Labels: labels,
		Violations: collect(
			labelErrs,
			core.CheckField(t, core.FieldCheck{
				Valid:   core.NewLabelSet(labels...),
				TopTerm: "mutant MHC protein complex",
			}),
			core.CheckField(t, core.FieldCheck{
				Field:    schema.MutantOf,
				Valid:    in.Labels(schema.TableMolecule),
				Source:   schema.TableMolecule,
				Optional: true,
			}),
			core.CheckRestrictionLevel(t, schema.MutantMoleculeFieldSpecs),
			checkTaxon(t, in.External, taxonOptional()),
		),
	}
}
