// Package classify turns alignment records into per-gene decisions.
//
// Unique mode keeps genes that align to nothing but themselves in either
// direction. Group mode folds every alignment of a target-species gene into
// a GroupGene and assigns one of three desirability tiers.
package classify

import "errors"

var (
	// ErrNoUniqueGenes is returned when a uniqueness collapse is empty.
	// The unique workflow stops; nothing crashes.
	ErrNoUniqueGenes = errors.New("no unique genes")
	// ErrNoConsensusGenes is returned when no tier received any gene.
	ErrNoConsensusGenes = errors.New("no consensus genes")
)

// Gene is one candidate locus: a gene of a species and its length.
type Gene struct {
	Species string
	Gene    string
	Length  int
	// Source is the CDS species the sequence is read from. Empty means Species.
	Source string
}

// SeqSpecies is the species name the gene's sequence is looked up under.
func (g Gene) SeqSpecies() string {
	if g.Source != "" {
		return g.Source
	}
	return g.Species
}
