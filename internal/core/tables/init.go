// Package tables registers the ontology template tables with the core
// registry. Import this package to ensure all tables are registered.
package tables

// Each table file uses init() to register its rule set. Order fixes the
// processing and report order:
//
//	iedb, genetic-locus, chain, chain-sequence, haplotype, serotype,
//	molecule, mutant-molecule, haplotype-molecule, serotype-molecule
const (
	orderIEDB = (iota + 1) * 10
	orderGeneticLocus
	orderChain
	orderChainSequence
	orderHaplotype
	orderSerotype
	orderMolecule
	orderMutantMolecule
	orderHaplotypeMolecule
	orderSerotypeMolecule
)
