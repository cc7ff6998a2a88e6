package app

import (
	"fmt"
	"io"
	"path/filepath"

	"puppy/internal/alignment"
	"puppy/internal/classify"
	"puppy/internal/rank"
	"puppy/internal/store"
	"puppy/internal/writers"
)

// uniqueGenes classifies the alignment table, or loads a catalog written by
// an earlier run when the input is named final_genes.tsv. The catalog is
// (re)written to the outdir.
func (r *runner) uniqueGenes() ([]classify.Gene, error) {
	var (
		genes []classify.Gene
		err   error
	)
	if filepath.Base(r.cfg.Input) == writers.CatalogFile {
		r.log.Info("loading unique gene catalog", "file", r.cfg.Input)
		genes, err = classify.LoadCatalogFile(r.cfg.Input)
		if err != nil {
			return nil, err
		}
	} else {
		recs, err := r.loadAlignments()
		if err != nil {
			return nil, err
		}
		r.log.Info("looking for unique genes")
		genes, err = classify.Unique(recs)
		if err != nil {
			return nil, err
		}
	}
	r.noteGenes("unique", len(genes), func(i int) store.GeneRow {
		return store.GeneRow{Species: genes[i].Species, Gene: genes[i].Gene, Length: genes[i].Length}
	})
	r.log.Info("unique genes", "count", len(genes))

	dst := r.out(writers.CatalogFile)
	if same, _ := samePath(dst, r.cfg.Input); same {
		return genes, nil
	}
	if err := writers.WriteFile(dst, func(w io.Writer) error { return writers.WriteCatalog(w, genes) }); err != nil {
		return nil, err
	}
	return genes, nil
}

// uniqueLoci ranks unique genes and takes the top genes of every target
// species in CDS file order.
func (r *runner) uniqueLoci(genes []classify.Gene) ([]classify.Gene, error) {
	minLen := r.cfg.Primer.ProductMax
	r.log.Info("dropping genes shorter than the longest amplicon", "min_length", minLen)
	sorted := rank.Unique(genes, minLen)

	want := r.cfg.GenesPerSpecies
	picks, missing := rank.UniqueLoci(sorted, r.seqs.Species(), want)
	for _, p := range picks {
		if p.Short {
			r.log.Warn("fewer unique genes than requested", "species", p.Species, "genes", len(p.Genes), "requested", want)
		} else {
			r.log.Info("designing primers for the top unique genes", "species", p.Species, "genes", len(p.Genes))
		}
	}
	for _, m := range missing {
		r.log.Warn("cannot design taxon-specific primers: no unique genes found", "species", m)
	}

	var loci []classify.Gene
	for _, p := range picks {
		loci = append(loci, p.Genes...)
	}
	if len(loci) == 0 {
		return nil, fmt.Errorf("%w: none of at least %d bp in the target species", classify.ErrNoUniqueGenes, minLen)
	}
	return loci, nil
}

// groupGenes classifies the alignment table against the target species and
// writes one table per non-empty tier.
func (r *runner) groupGenes() ([]classify.GroupGene, error) {
	recs, err := r.loadAlignments()
	if err != nil {
		return nil, err
	}
	targets := r.seqs.Species()
	genes, err := classify.Group(recs, targets)
	if err != nil {
		return nil, err
	}
	byTier := classify.ByTier(genes)
	for _, t := range classify.Tiers {
		bucket := byTier[t]
		r.noteGenes(t.String(), len(bucket), func(i int) store.GeneRow {
			return store.GeneRow{Species: bucket[i].Species, Gene: bucket[i].Gene, Length: bucket[i].Length}
		})
		name := writers.TierFile[t]
		if len(bucket) == 0 {
			r.log.Info("no genes in tier; not writing its table", "tier", t, "file", name)
			continue
		}
		if err := writers.WriteFile(r.out(name), func(w io.Writer) error {
			return writers.WriteTierTable(w, bucket)
		}); err != nil {
			return nil, err
		}
		r.log.Info("wrote tier table", "tier", t, "file", name, "genes", len(bucket))
	}
	return genes, nil
}

// groupLoci ranks group genes and strides through them by the number of
// targets so each pick is a different gene rather than its ortholog.
func (r *runner) groupLoci(genes []classify.GroupGene) ([]classify.Gene, error) {
	minLen := r.cfg.Primer.ProductMax
	sorted, tier := rank.Group(genes, minLen)
	if tier == classify.Ideal {
		r.log.Info("found genes that amplify every target", "file", writers.TierFile[tier])
	} else {
		r.log.Warn("no gene amplifies every target; using genes that cover as many as possible", "file", writers.TierFile[tier])
	}
	r.log.Info("dropping genes shorter than the longest amplicon", "min_length", minLen, "kept", len(sorted))

	picked := rank.Stride(sorted, len(r.seqs.Species()), r.cfg.GenesPerSpecies)
	if len(picked) == 0 {
		return nil, fmt.Errorf("%w: no %s gene of at least %d bp", classify.ErrNoConsensusGenes, tier, minLen)
	}
	loci := make([]classify.Gene, len(picked))
	for i, g := range picked {
		loci[i] = classify.Gene{Species: g.Species, Gene: g.Gene, Length: g.Length}
	}
	return loci, nil
}

func (r *runner) loadAlignments() ([]alignment.Record, error) {
	r.log.Info("loading alignments", "file", r.cfg.Input)
	recs, err := alignment.LoadFile(r.cfg.Input)
	if err != nil {
		return nil, err
	}
	r.log.Debug("loaded alignments", "records", len(recs))
	return recs, nil
}

func samePath(a, b string) (bool, error) {
	pa, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	pb, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return pa == pb, nil
}
