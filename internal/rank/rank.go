// Package rank orders classified genes and picks the loci handed to the
// primer oracle.
package rank

import (
	"sort"
	"strings"

	"puppy/internal/classify"
)

// Unique sorts genes by species ascending then length descending and drops
// genes shorter than minLen. The input slice is not modified.
func Unique(genes []classify.Gene, minLen int) []classify.Gene {
	out := make([]classify.Gene, len(genes))
	copy(out, genes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Species != out[j].Species {
			return out[i].Species < out[j].Species
		}
		return out[i].Length > out[j].Length
	})
	return filterLen(out, minLen, func(g classify.Gene) int { return g.Length })
}

// Pick is the selection made for one target species.
type Pick struct {
	Species string
	Genes   []classify.Gene
	// Short is set when fewer genes than requested were available.
	Short bool
}

// UniqueLoci walks the target species in order and takes the first
// perSpecies genes whose species contains the name. Species with no
// candidate end up in missing.
func UniqueLoci(sorted []classify.Gene, species []string, perSpecies int) (picks []Pick, missing []string) {
	for _, name := range species {
		var rows []classify.Gene
		for _, g := range sorted {
			if strings.Contains(g.Species, name) {
				g.Source = name
				rows = append(rows, g)
			}
		}
		if len(rows) == 0 {
			missing = append(missing, name)
			continue
		}
		p := Pick{Species: name, Short: len(rows) < perSpecies}
		if len(rows) > perSpecies {
			rows = rows[:perSpecies]
		}
		p.Genes = rows
		picks = append(picks, p)
	}
	return picks, missing
}

// Group ranks classified group genes. Ideal genes are used when there are
// any, longest first; otherwise Secondary genes by targets found desc,
// length desc, then unintended count asc. Genes shorter than minLen are
// dropped. The returned tier names the bucket that was used.
func Group(genes []classify.GroupGene, minLen int) ([]classify.GroupGene, classify.Tier) {
	buckets := classify.ByTier(genes)
	tier := classify.Secondary
	if len(buckets[classify.Ideal]) > 0 {
		tier = classify.Ideal
	}
	used := append([]classify.GroupGene(nil), buckets[tier]...)

	if tier == classify.Ideal {
		sort.SliceStable(used, func(i, j int) bool { return used[i].Length > used[j].Length })
	} else {
		sort.SliceStable(used, func(i, j int) bool {
			a, b := used[i], used[j]
			if a.Found() != b.Found() {
				return a.Found() > b.Found()
			}
			if a.Length != b.Length {
				return a.Length > b.Length
			}
			return a.UnintendedCount < b.UnintendedCount
		})
	}
	return filterLen(used, minLen, func(g classify.GroupGene) int { return g.Length }), tier
}

// Stride returns the elements at indices 0, step, 2*step, ... up to n of
// them. Orthologous genes across the target species tend to share a length
// and sit next to each other after ranking, so stepping by the number of
// targets approximates one locus per distinct gene.
func Stride[T any](sorted []T, step, n int) []T {
	if step < 1 {
		step = 1
	}
	var out []T
	for i := 0; i < len(sorted) && len(out) < n; i += step {
		out = append(out, sorted[i])
	}
	return out
}

func filterLen[T any](in []T, minLen int, length func(T) int) []T {
	out := in[:0]
	for _, v := range in {
		if length(v) >= minLen {
			out = append(out, v)
		}
	}
	return out
}
