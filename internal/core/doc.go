// Package core provides the template validation engine.
//
// The package checks that every row of every ontology template table
// references only labels that are defined, correctly shaped, and consistent
// with the tables it depends on. It has no UI dependencies and is used by the
// CLI, the watcher and the HTTP server alike.
//
// # Table Registry
//
// Tables are registered at init time using [Register]. Each [TableDefinition]
// names the table, the columns its rules read, the tables whose labels it
// resolves against and its rule set:
//
//	core.Register(core.TableDefinition{
//	    Info:       core.TableInfo{Key: "chain", Label: "Chains", Order: 30},
//	    FieldSpecs: schema.ChainFieldSpecs,
//	    DependsOn:  []string{"genetic-locus"},
//	    Validate:   validateChain,
//	})
//
// # Checks
//
// Rule sets are composed from [CheckLabels], [CheckField] and
// [CheckRestrictionLevel] plus table-specific rules. Every check is a pure
// function over an in-memory [Table] and returns unnumbered [Violation]
// values.
//
// # Runs
//
// [Validator.Run] loads the index, the external terms and every table once,
// groups the tables into stages with [Plan] and validates each stage in
// parallel. Labels produced by a stage are published to later stages. Once
// every table is done, violations are numbered by a [Collector] in
// processing order, so the report is identical on every run over the same
// inputs.
//
// # Faults
//
// Only unreadable inputs and invalid table configuration are returned as
// errors. [MapError] turns them into coded user messages.
package core
