package writers

import (
	"fmt"
	"io"

	"puppy/internal/classify"
	"puppy/internal/jsonlutil"
	"puppy/internal/jsonutil"
	"puppy/internal/pairs"
	"puppy/pkg/api"
)

func ToAPIPair(p pairs.Result) api.PrimerPairV1 {
	return api.PrimerPairV1{
		Species: p.Species, Gene: p.Gene, GeneSequence: p.GeneSequence,
		PairIndex: p.PairIndex, PairPenalty: p.PairPenalty, AmpliconSize: p.AmpliconSize,
		Forward: p.Forward, Reverse: p.Reverse,
		ForwardLen: p.ForwardLen, ReverseLen: p.ReverseLen,
		ForwardTm: p.ForwardTm, ReverseTm: p.ReverseTm,
		ForwardGC: p.ForwardGC, ReverseGC: p.ReverseGC,
	}
}

func ToAPIGroupGene(g classify.GroupGene) api.GroupGeneV1 {
	return api.GroupGeneV1{
		Species: g.Species, Gene: g.Gene, Length: g.Length,
		Tier:           g.Tier.String(),
		Targets:        g.TargetsAligned,
		TargetsMissing: g.TargetsMissing,
		Unintended:     g.Unintended,
		UnintendedRows: g.UnintendedRows,
		Rationale:      g.Rationale,
	}
}

func ToAPIGene(g classify.Gene) api.UniqueGeneV1 {
	return api.UniqueGeneV1{Species: g.Species, Gene: g.Gene, Length: g.Length}
}

// WriteGenesJSONL streams catalog rows as JSON lines.
func WriteGenesJSONL(w io.Writer, genes []classify.Gene) error {
	return jsonlutil.Write(w, genes, ToAPIGene, IsBrokenPipe)
}

// WriteGroupGenesJSONL streams classified group genes as JSON lines.
func WriteGroupGenesJSONL(w io.Writer, genes []classify.GroupGene) error {
	return jsonlutil.Write(w, genes, ToAPIGroupGene, IsBrokenPipe)
}

// EmitGenes prints catalog rows in one of the --emit formats.
func EmitGenes(format string, w io.Writer, genes []classify.Gene) error {
	switch format {
	case "tsv":
		return WriteCatalog(w, genes)
	case "json":
		return jsonutil.EncodeArray(w, genes, ToAPIGene)
	case "jsonl":
		return WriteGenesJSONL(w, genes)
	}
	return fmt.Errorf("unknown gene format %q", format)
}

// EmitGroupGenes prints classified group genes, tier by tier.
func EmitGroupGenes(format string, w io.Writer, genes []classify.GroupGene) error {
	byTier := classify.ByTier(genes)
	ordered := make([]classify.GroupGene, 0, len(genes))
	for _, t := range classify.Tiers {
		ordered = append(ordered, byTier[t]...)
	}
	switch format {
	case "tsv":
		return WriteTierTable(w, ordered)
	case "json":
		return jsonutil.EncodeArray(w, ordered, ToAPIGroupGene)
	case "jsonl":
		return WriteGroupGenesJSONL(w, ordered)
	}
	return fmt.Errorf("unknown gene format %q", format)
}
