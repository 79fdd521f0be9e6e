package tables

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

// fixture is a minimal but complete ontology where every reference resolves.
var fixture = map[string][]string{
	"index.tsv": {
		"ID\tLabel\tType",
		"ID\tLABEL\tTYPE",
		"MRO:1\tHLA locus\towl:Class",
		"MRO:2\tHLA-A locus\towl:Class",
		"MRO:3\tHLA-A*01:01 chain\towl:Class",
		"MRO:4\tH-2 haplotype\towl:Class",
		"MRO:5\tH-2b haplotype\towl:Class",
		"MRO:6\tA1 serotype\towl:Class",
		"MRO:7\tHLA-A*01:01 protein complex\towl:Class",
		"MRO:8\tHLA-A*01:01 K66A mutant protein complex\towl:Class",
		"MRO:9\tHLA class I with H-2b haplotype\towl:Class",
		"MRO:10\tHLA class I with A1 serotype\towl:Class",
	},
	"iedb/iedb.tsv": {
		"Label\tIEDB ID",
		"LABEL\tA iedb-id",
		"HLA-A*01:01 protein complex\t1",
	},
	"templates/external.tsv": {
		"ID\tLabel",
		"ID\tLABEL",
		"NCBITaxon:9606\thuman",
		"NCBITaxon:10090\tmouse",
	},
	"templates/genetic-locus.tsv": {
		"ID\tLabel\tParent\tIn Taxon",
		"ID\tLABEL\tSC %\tSC 'in taxon' some %",
		"MRO:1\tHLA locus\tMHC locus\thuman",
		"MRO:2\tHLA-A locus\tHLA locus\t",
	},
	"templates/chain.tsv": {
		"ID\tLabel\tParent\tGene",
		"ID\tLABEL\tSC %\tSC 'gene product of' some %",
		"MRO:3\tHLA-A*01:01 chain\tprotein\tHLA-A locus",
	},
	"templates/chain-sequence.tsv": {
		"Label\tAccession\tSequence",
		"LABEL\tA accession\tA sequence",
		"HLA-A*01:01 chain\tHLA00001\tMAVMAPRTLLLLLSGALALTQTWA",
	},
	"templates/haplotype.tsv": {
		"ID\tLabel\tParent\tIn Taxon",
		"ID\tLABEL\tSC %\tSC 'in taxon' some %",
		"MRO:4\tH-2 haplotype\tMHC haplotype\tmouse",
		"MRO:5\tH-2b haplotype\tH-2 haplotype\t",
	},
	"templates/serotype.tsv": {
		"ID\tLabel\tParent\tIn Taxon",
		"ID\tLABEL\tSC %\tSC 'in taxon' some %",
		"MRO:6\tA1 serotype\tMHC serotype\thuman",
	},
	"templates/molecule.tsv": {
		"ID\tLabel\tParent\tAlpha Chain\tBeta Chain\tWith Haplotype\tWith Serotype\tRestriction Level\tIn Taxon",
		"ID\tLABEL\tSC %\t\t\t\t\t\t",
		"MRO:7\tHLA-A*01:01 protein complex\tMHC protein complex\tHLA-A*01:01 chain\tBeta-2-microglobulin\t\t\tcomplete molecule\thuman",
	},
	"templates/mutant-molecule.tsv": {
		"ID\tLabel\tParent\tMutant Of\tRestriction Level\tIn Taxon",
		"ID\tLABEL\tSC %\t\t\t",
		"MRO:8\tHLA-A*01:01 K66A mutant protein complex\tmutant MHC protein complex\tHLA-A*01:01 protein complex\tcomplete molecule\thuman",
	},
	"templates/haplotype-molecule.tsv": {
		"ID\tLabel\tParent\tWith Haplotype\tRestriction Level\tIn Taxon",
		"ID\tLABEL\tSC %\t\t\t",
		"MRO:9\tHLA class I with H-2b haplotype\tHLA-A*01:01 protein complex\tH-2b haplotype\thaplotype\tmouse",
	},
	"templates/serotype-molecule.tsv": {
		"ID\tLabel\tParent\tWith Serotype\tRestriction Level\tIn Taxon",
		"ID\tLABEL\tSC %\t\t\t",
		"MRO:10\tHLA class I with A1 serotype\tHLA-A*01:01 protein complex\tA1 serotype\tserotype\t",
	},
}

func writeFixture(t *testing.T, overrides map[string][]string) core.Sources {
	t.Helper()
	dir := t.TempDir()

	files := make(map[string][]string, len(fixture))
	for name, lines := range fixture {
		files[name] = lines
	}
	for name, lines := range overrides {
		files[name] = lines
	}

	for name, lines := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	}

	return core.Sources{
		IndexPath:   filepath.Join(dir, "index.tsv"),
		IEDBPath:    filepath.Join(dir, "iedb", "iedb.tsv"),
		TemplateDir: filepath.Join(dir, "templates"),
	}
}

func run(t *testing.T, src core.Sources) *core.Report {
	t.Helper()
	v := core.NewValidator(core.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	report, err := v.Run(context.Background(), src)
	require.NoError(t, err)
	return report
}

func TestPipeline_Clean(t *testing.T) {
	report := run(t, writeFixture(t, nil))

	require.True(t, report.Clean(), "expected clean run, got %+v", report.Violations)
	assert.Len(t, report.Tables, 10)
}

func brokenFixture() map[string][]string {
	return map[string][]string{
		"iedb/iedb.tsv": {
			"Label",
			"LABEL",
			"unheard of protein complex",
		},
		"templates/chain.tsv": {
			"ID\tLabel\tParent\tGene",
			"ID\tLABEL\tSC %\tSC 'gene product of' some %",
			"MRO:3\tHLA-A*01:01 chain\tprotein\tHLA-A locus",
			"MRO:99\tA*01:01 chain\tprotein\t",
		},
		"templates/serotype-molecule.tsv": {
			"ID\tLabel\tParent\tWith Serotype\tRestriction Level\tIn Taxon",
			"ID\tLABEL\tSC %\t\t\t",
			"MRO:10\tHLA class I with A1 serotype\tHLA-A*01:01 protein complex\tA1 serotype\tserotype\t",
			"MRO:11\tHLA class I with A1 serotype\tHLA-A*01:01 protein complex\tA1 serotype\tSerotype\t",
		},
		"templates/genetic-locus.tsv": {
			"ID\tLabel\tParent\tIn Taxon",
			"ID\tLABEL\tSC %\tSC 'in taxon' some %",
			"MRO:1\tHLA locus\tMHC locus\thuman",
			"MRO:2\tHLA-A locus\tHLA locus\tmartian",
		},
	}
}

func TestPipeline_Violations(t *testing.T) {
	report := run(t, writeFixture(t, brokenFixture()))

	type brief struct {
		ID    int
		Table string
		Cell  string
		Rule  string
	}
	var got []brief
	for _, v := range report.Violations {
		got = append(got, brief{v.ID, v.Table, v.Cell, v.RuleID})
	}
	want := []brief{
		{1, schema.TableIEDB, "A3", core.RuleUnknownLabel},
		{2, schema.TableGeneticLocus, "D4", core.RuleInvalidTaxon},
		{3, schema.TableChain, "B4", core.RuleUnknownLabel},
		{4, schema.TableChain, "D4", core.RuleMissingChainGene},
		{5, schema.TableSerotypeMolecule, "E4", core.RuleInvalidRestrictionLevel},
	}
	assert.Equal(t, want, got)
}

func TestPipeline_Idempotent(t *testing.T) {
	src := writeFixture(t, brokenFixture())

	first := run(t, src)
	second := run(t, src)

	assert.Equal(t, first.Violations, second.Violations)
	for i := 1; i < len(first.Violations); i++ {
		require.Greater(t, first.Violations[i].ID, first.Violations[i-1].ID, "IDs not strictly increasing at %d", i)
	}
}
