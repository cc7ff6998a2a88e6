package writers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"puppy/internal/classify"
	"puppy/internal/pairs"
	"puppy/internal/report"
	"puppy/internal/seqstore"
)

// Header rows.
var (
	CatalogHeader = classify.CatalogHeader
	TierHeader    = []string{
		"species_name", "species_gene", "gene_length", "targets",
		"num_targets_found", "num_targets_missing", "Missing_targets",
		"num_unintended_targets", "unintended_targets", "Comments",
	}
	ReportHeader = []string{
		"species", "gene", "gene_sequence", "primer_option", "pair_penalty_score",
		"amplicon_size", "F_primer", "R_primer", "F_length", "R_length",
		"F_tm", "R_tm", "F_GC", "R_GC",
	}
	GeneCountsHeader = []string{"species", "genes"}
)

// TierFile maps each tier to its table file name.
var TierFile = map[classify.Tier]string{
	classify.Ideal:     "IdealGroupGenes.tsv",
	classify.Secondary: "SecondChoiceGroupGenes.tsv",
	classify.Undesired: "UndesiredGroupGenes.tsv",
}

const (
	CatalogFile    = "final_genes.tsv"
	GeneCountsFile = "gene_counts.tsv"
)

func newTSV(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

func writeRows(w io.Writer, header []string, n int, row func(i int) []string) error {
	cw := newTSV(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCatalog writes the unique-gene catalog.
func WriteCatalog(w io.Writer, genes []classify.Gene) error {
	return writeRows(w, CatalogHeader, len(genes), func(i int) []string {
		g := genes[i]
		return []string{g.Species, g.Gene, strconv.Itoa(g.Length)}
	})
}

// WriteTierTable writes one group-mode tier table.
func WriteTierTable(w io.Writer, genes []classify.GroupGene) error {
	return writeRows(w, TierHeader, len(genes), func(i int) []string {
		g := genes[i]
		return []string{
			g.Species, g.Gene, strconv.Itoa(g.Length),
			strings.Join(g.TargetsAligned, ","),
			strconv.Itoa(g.Found()),
			strconv.Itoa(len(g.TargetsMissing)),
			strings.Join(g.TargetsMissing, ","),
			strconv.Itoa(g.UnintendedCount),
			strings.Join(g.Unintended, ","),
			g.Comments(),
		}
	})
}

// WriteReport writes the final primer table.
func WriteReport(w io.Writer, rep report.Report) error {
	return writeRows(w, ReportHeader, len(rep.Rows), func(i int) []string {
		return reportRow(rep.Rows[i])
	})
}

func reportRow(p pairs.Result) []string {
	return []string{
		p.Species, p.Gene, p.GeneSequence,
		strconv.Itoa(p.PairIndex), ftoa(p.PairPenalty), strconv.Itoa(p.AmpliconSize),
		p.Forward, p.Reverse,
		strconv.Itoa(p.ForwardLen), strconv.Itoa(p.ReverseLen),
		ftoa(p.ForwardTm), ftoa(p.ReverseTm),
		ftoa(p.ForwardGC), ftoa(p.ReverseGC),
	}
}

// WriteGeneCounts writes the per-species CDS record counts.
func WriteGeneCounts(w io.Writer, counts []seqstore.Count) error {
	return writeRows(w, GeneCountsHeader, len(counts), func(i int) []string {
		return []string{counts[i].Species, strconv.Itoa(counts[i].Genes)}
	})
}

// WriteFile creates path and hands it to write.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
