package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerIEDB()
}

// IEDB labels must all be defined in the index. The table defines no labels
// of its own for other tables.
func registerIEDB() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableIEDB,
			Label: "IEDB",
			Order: orderIEDB,
		},
		FieldSpecs: schema.IEDBFieldSpecs,
		Validate: func(t *core.Table, in core.Inputs) core.Result {
			_, violations := core.CheckLabels(t, schema.TableIndex, in.IndexLabels(), nil)
			return core.Result{Violations: violations}
		},
	})
}
