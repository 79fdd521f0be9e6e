package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerSerotype()
}

func registerSerotype() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableSerotype,
			Label: "Serotypes",
			Order: orderSerotype,
		},
		FieldSpecs: schema.SerotypeFieldSpecs,
		Validate:   validateSerotype,
	})
}

func validateSerotype(t *core.Table, in core.Inputs) core.Result {
	labels, labelErrs := core.CheckLabels(t, schema.TableIndex, in.IndexLabels(), serotypeLabel)

	parentErrs := core.CheckField(t, core.FieldCheck{
		Valid:   core.NewLabelSet(labels...),
		TopTerm: "MHC serotype",
	})

	return core.Result{
		Labels:     labels,
		Violations: collect(labelErrs, parentErrs, checkTaxon(t, in.External, taxonOptional())),
	}
}
