package tables

import (
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

type cells = map[schema.Column]string

func countRule(vs []core.Violation, ruleID string) int {
	n := 0
	for _, v := range vs {
		if v.RuleID == ruleID {
			n++
		}
	}
	return n
}

func findRule(vs []core.Violation, ruleID string) (core.Violation, bool) {
	for _, v := range vs {
		if v.RuleID == ruleID {
			return v, true
		}
	}
	return core.Violation{}, false
}

// testInputs builds inputs whose index holds labels.
func testInputs(labels []string, external []string, upstream map[string][]string) core.Inputs {
	rows := make([]map[schema.Column]string, len(labels))
	for i, l := range labels {
		rows[i] = cells{schema.ID: "MRO:" + l, schema.Label: l}
	}
	index := core.NewIndex(core.NewTable(schema.TableIndex, []schema.Column{schema.ID, schema.Label}, rows...))

	up := make(map[string]core.LabelSet, len(upstream))
	for k, v := range upstream {
		up[k] = core.NewLabelSet(v...)
	}
	return core.NewInputs(index, core.NewLabelSet(external...), up)
}
