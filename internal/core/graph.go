package core

import (
	"fmt"
	"sort"
	"strings"
)

// Stage is a set of tables whose dependencies are all satisfied by earlier
// stages. Tables within a stage may be validated concurrently.
type Stage []TableDefinition

// Plan validates the dependency graph of defs and groups the tables into
// stages by depth: a table with no dependencies is at depth 0, any other
// table is one deeper than its deepest dependency. Tables within a stage are
// in processing order.
//
// Returns a GraphError wrapping ErrUnknownTable when a table depends on a key
// not present in defs, or ErrDependencyCycle when the dependencies form a
// cycle. Checks run in key order so the error reported is deterministic.
func Plan(defs []TableDefinition) ([]Stage, error) {
	byKey := make(map[string]TableDefinition, len(defs))
	keys := make([]string, 0, len(defs))
	for _, def := range defs {
		if _, dup := byKey[def.Info.Key]; dup {
			return nil, &GraphError{
				Kind: ErrDuplicateTable,
				Msg:  fmt.Sprintf("duplicate table key: %q", def.Info.Key),
			}
		}
		byKey[def.Info.Key] = def
		keys = append(keys, def.Info.Key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		deps := append([]string(nil), byKey[key].DependsOn...)
		sort.Strings(deps)
		for _, dep := range deps {
			if _, ok := byKey[dep]; !ok {
				return nil, &GraphError{
					Kind: ErrUnknownTable,
					Msg:  fmt.Sprintf("%q depends on unregistered table %q", key, dep),
				}
			}
		}
	}

	// Depth-first with coloring: 0 unvisited, 1 in progress, 2 done.
	color := make(map[string]int, len(defs))
	depth := make(map[string]int, len(defs))
	var path []string

	var visit func(key string) error
	visit = func(key string) error {
		color[key] = 1
		path = append(path, key)

		deps := append([]string(nil), byKey[key].DependsOn...)
		sort.Strings(deps)

		d := 0
		for _, dep := range deps {
			switch color[dep] {
			case 1:
				start := 0
				for i, k := range path {
					if k == dep {
						start = i
						break
					}
				}
				cycle := append(append([]string(nil), path[start:]...), dep)
				return &GraphError{
					Kind: ErrDependencyCycle,
					Msg:  strings.Join(cycle, " -> "),
				}
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}

		path = path[:len(path)-1]
		color[key] = 2
		depth[key] = d
		return nil
	}

	for _, key := range keys {
		if color[key] == 0 {
			if err := visit(key); err != nil {
				return nil, err
			}
		}
	}

	maxDepth := -1
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	stages := make([]Stage, maxDepth+1)
	for _, key := range keys {
		d := depth[key]
		stages[d] = append(stages[d], byKey[key])
	}
	for _, stage := range stages {
		sortDefinitions(stage)
	}
	return stages, nil
}
