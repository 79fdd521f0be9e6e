package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func init() {
	registerChainSequence()
}

// Chain-sequence labels repeat the chain labels, so they are checked against
// the chain table instead of the index and carry no shape rule.
func registerChainSequence() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   schema.TableChainSequence,
			Label: "Chain Sequences",
			Order: orderChainSequence,
		},
		FieldSpecs: schema.ChainSequenceFieldSpecs,
		DependsOn:  []string{schema.TableChain},
		Validate: func(t *core.Table, in core.Inputs) core.Result {
			_, violations := core.CheckLabels(t, schema.TableChain, in.Labels(schema.TableChain), nil)
			return core.Result{Violations: violations}
		},
	})
}
