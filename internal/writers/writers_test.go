package writers

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"puppy/internal/classify"
	"puppy/internal/pairs"
	"puppy/internal/report"
	"puppy/internal/seqstore"
	"puppy/pkg/api"
)

func readTSV(t *testing.T, r io.Reader) [][]string {
	t.Helper()
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	rows, err := cr.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCatalogRoundTrip(t *testing.T) {
	genes := []classify.Gene{{Species: "A", Gene: "cds_1", Length: 300}, {Species: "B", Gene: "peg.6", Length: 450}}
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, genes))
	assert.True(t, strings.HasPrefix(buf.String(), "species_name\tgene_name\tgene_length\n"))

	got, err := classify.LoadCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, genes, got)
}

func TestTierTableQuotesComments(t *testing.T) {
	g := classify.GroupGene{
		Species: "Akk-muc", Gene: "cds_1", Length: 600,
		TargetsAligned: []string{"Akk", "Bac"}, TargetsMissing: []string{"Cls-dif"},
		Unintended: []string{"Ent"}, UnintendedCount: 1,
		Rationale: []string{"A:\nfirst", "B:\nsecond"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteTierTable(&buf, []classify.GroupGene{g}))

	rows := readTSV(t, &buf)
	require.Len(t, rows, 2)
	assert.Equal(t, TierHeader, rows[0])
	assert.Equal(t, []string{"Akk-muc", "cds_1", "600", "Akk,Bac", "2", "1", "Cls-dif", "1", "Ent", "A:\nfirst\nB:\nsecond"}, rows[1])
}

func sampleReport() report.Report {
	return report.Report{Mode: report.Unique, Rows: []pairs.Result{{
		Species: "A", Gene: "cds_1", GeneSequence: "ACGT", PairIndex: 0, PairPenalty: 0.25,
		AmpliconSize: 120, Forward: "AAAA", Reverse: "TTTT", ForwardLen: 4, ReverseLen: 4,
		ForwardTm: 59.5, ReverseTm: 60, ForwardGC: 50, ReverseGC: 45.5,
	}}}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleReport()))
	rows := readTSV(t, &buf)
	require.Len(t, rows, 2)
	assert.Equal(t, ReportHeader, rows[0])
	assert.Equal(t, []string{"A", "cds_1", "ACGT", "0", "0.25", "120", "AAAA", "TTTT", "4", "4", "59.5", "60", "50", "45.5"}, rows[1])
}

func TestWriteGeneCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeneCounts(&buf, []seqstore.Count{{Species: "A", Genes: 12}}))
	assert.Equal(t, "species\tgenes\nA\t12\n", buf.String())
}

func TestEmitReportFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "jsonl", "tsv"}, Formats())

	var buf bytes.Buffer
	require.NoError(t, EmitReport("json", &buf, sampleReport()))
	var arr []api.PrimerPairV1
	require.NoError(t, json.Unmarshal(buf.Bytes(), &arr))
	require.Len(t, arr, 1)
	assert.Equal(t, 120, arr[0].AmpliconSize)

	buf.Reset()
	rep := sampleReport()
	rep.Rows = append(rep.Rows, rep.Rows[0])
	require.NoError(t, EmitReport("jsonl", &buf, rep))
	sc := bufio.NewScanner(&buf)
	n := 0
	for sc.Scan() {
		var p api.PrimerPairV1
		require.NoError(t, json.Unmarshal(sc.Bytes(), &p))
		assert.Equal(t, "AAAA", p.Forward)
		n++
	}
	assert.Equal(t, 2, n)

	err := EmitReport("fasta", &buf, rep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report format")
}

func TestGroupGenesJSONL(t *testing.T) {
	var buf bytes.Buffer
	g := classify.GroupGene{Species: "A", Gene: "cds_1", Tier: classify.Undesired, Rationale: []string{"x"}}
	require.NoError(t, WriteGroupGenesJSONL(&buf, []classify.GroupGene{g}))
	var got api.GroupGeneV1
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))
	assert.Equal(t, "undesired", got.Tier)
}

func TestCatalogQuotedCellsReadBack(t *testing.T) {
	genes := []classify.Gene{{Species: `Akk "muc"`, Gene: " cds_1", Length: 300}}
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, genes))
	require.Contains(t, buf.String(), `"Akk ""muc"""`)

	got, err := classify.LoadCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, genes, got)
}

func TestEmitGenes(t *testing.T) {
	genes := []classify.Gene{{Species: "A", Gene: "cds_1", Length: 300}, {Species: "B", Gene: "cds_4", Length: 450}}

	var buf bytes.Buffer
	require.NoError(t, EmitGenes("json", &buf, genes))
	var arr []api.UniqueGeneV1
	require.NoError(t, json.Unmarshal(buf.Bytes(), &arr))
	assert.Equal(t, []api.UniqueGeneV1{{Species: "A", Gene: "cds_1", Length: 300}, {Species: "B", Gene: "cds_4", Length: 450}}, arr)

	buf.Reset()
	require.NoError(t, EmitGenes("jsonl", &buf, genes))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	buf.Reset()
	require.NoError(t, EmitGenes("tsv", &buf, genes))
	assert.True(t, strings.HasPrefix(buf.String(), "species_name\t"))

	assert.Error(t, EmitGenes("fasta", &buf, genes))
}

func TestEmitGroupGenesOrdersByTier(t *testing.T) {
	genes := []classify.GroupGene{
		{Species: "A", Gene: "cds_3", Tier: classify.Undesired},
		{Species: "A", Gene: "cds_1", Tier: classify.Ideal},
		{Species: "A", Gene: "cds_2", Tier: classify.Secondary},
	}
	var buf bytes.Buffer
	require.NoError(t, EmitGroupGenes("json", &buf, genes))
	var arr []api.GroupGeneV1
	require.NoError(t, json.Unmarshal(buf.Bytes(), &arr))
	require.Len(t, arr, 3)
	assert.Equal(t, []string{"ideal", "secondary", "undesired"}, []string{arr[0].Tier, arr[1].Tier, arr[2].Tier})

	assert.Error(t, EmitGroupGenes("xml", &buf, genes))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), CatalogFile)
	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		return WriteCatalog(w, nil)
	}))
	got, err := classify.LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "no", "such"), func(io.Writer) error { return nil }))
}

func TestIsBrokenPipe(t *testing.T) {
	assert.True(t, IsBrokenPipe(io.ErrClosedPipe))
	assert.False(t, IsBrokenPipe(nil))
	assert.False(t, IsBrokenPipe(io.EOF))
}
