package schema

// Table keys. Template tables are read from "<template dir>/<key>.tsv".
const (
	TableIndex             = "index"
	TableExternal          = "external"
	TableIEDB              = "iedb"
	TableGeneticLocus      = "genetic-locus"
	TableChain             = "chain"
	TableChainSequence     = "chain-sequence"
	TableHaplotype         = "haplotype"
	TableSerotype          = "serotype"
	TableMolecule          = "molecule"
	TableMutantMolecule    = "mutant-molecule"
	TableHaplotypeMolecule = "haplotype-molecule"
	TableSerotypeMolecule  = "serotype-molecule"
)

// IndexFieldSpecs defines the columns of the global label index. Any other
// columns (ID, Type, ...) are ignored.
var IndexFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
}

// ExternalFieldSpecs defines the columns of the imported-term table.
var ExternalFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
}

// IEDBFieldSpecs defines the columns of the IEDB cross-reference table.
var IEDBFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
}

var GeneticLocusFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
	{Name: Parent, Required: true},
	{Name: InTaxon, Required: true},
}

var ChainFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
	{Name: Parent, Required: true},
	{Name: Gene, Required: true},
}

var ChainSequenceFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
}

var HaplotypeFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
	{Name: Parent, Required: true},
	{Name: InTaxon, Required: true},
}

var SerotypeFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
	{Name: Parent, Required: true},
	{Name: InTaxon, Required: true},
}

var MoleculeFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
	{Name: Parent, Required: true},
	{Name: AlphaChain, Required: true},
	{Name: BetaChain, Required: true},
	{Name: WithHaplotype, Required: true},
	{Name: WithSerotype, Required: true},
	{Name: RestrictionLevel, Required: true, EnumValues: []string{"class", "locus", "complete molecule", "partial molecule"}},
	{Name: InTaxon, Required: true},
}

var MutantMoleculeFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
	{Name: Parent, Required: true},
	{Name: MutantOf, Required: true},
	{Name: RestrictionLevel, Required: true, EnumValues: []string{"class", "complete molecule", "partial molecule"}},
	{Name: InTaxon, Required: true},
}

var HaplotypeMoleculeFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
	{Name: Parent, Required: true},
	{Name: WithHaplotype, Required: true},
	{Name: RestrictionLevel, Required: true, EnumValues: []string{"haplotype"}},
	{Name: InTaxon, Required: true},
}

var SerotypeMoleculeFieldSpecs = []FieldSpec{
	{Name: Label, Required: true},
	{Name: Parent, Required: true},
	{Name: WithSerotype, Required: true},
	{Name: RestrictionLevel, Required: true, EnumValues: []string{"serotype"}},
	{Name: InTaxon, Required: true},
}
