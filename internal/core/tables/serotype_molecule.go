package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerSerotypeMolecule()
}

func registerSerotypeMolecule() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableSerotypeMolecule,
			Label: "Serotype Molecules",
			Order: orderSerotypeMolecule,
		},
		FieldSpecs: schema.SerotypeMoleculeFieldSpecs,
		DependsOn:  []string{schema.TableMolecule, schema.TableSerotype},
		Validate:   validateSerotypeMolecule,
	})
}

// The restriction level must be exactly "serotype"; case is not folded.
func validateSerotypeMolecule(t *core.Table, in core.Inputs) core.Result {
	labels, labelErrs := core.CheckLabels(t, schema.TableIndex, in.IndexLabels(), serotypeMoleculeLabel)

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
				Field:  schema.WithSerotype,
				Valid:  in.Labels(schema.TableSerotype),
				Source: schema.TableSerotype,
			}),
			core.CheckRestrictionLevel(t, schema.SerotypeMoleculeFieldSpecs),
			checkTaxon(t, in.External, taxonOptional()),
		),
	}
}
