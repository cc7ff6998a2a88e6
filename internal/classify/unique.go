package classify

import (
	"fmt"
	"sort"

	"puppy/internal/alignment"
)

// projection is a record without its two label columns. Duplicate detection
// on the union of both collapses happens on this key.
type projection struct {
	query, target  alignment.Label
	qlen, tlen     int
	alnlen         int
	qs, qe, ts, te int
	pident, qcov   float64
	tcov, evalue   float64
}

func project(r alignment.Record) projection {
	return projection{
		query: r.Query, target: r.Target,
		qlen: r.QueryLen, tlen: r.TargetLen, alnlen: r.AlignLen,
		qs: r.QueryStart, qe: r.QueryEnd, ts: r.TargetStart, te: r.TargetEnd,
		pident: r.Identity, qcov: r.QueryCov, tcov: r.TargetCov, evalue: r.EValue,
	}
}

// singletons returns the records whose key occurs exactly once, sorted by
// query label.
func singletons(recs []alignment.Record, key func(alignment.Record) string) []alignment.Record {
	n := make(map[string]int, len(recs))
	for _, r := range recs {
		n[key(r)]++
	}
	out := make([]alignment.Record, 0, len(n))
	for _, r := range recs {
		if n[key(r)] == 1 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QueryLabel < out[j].QueryLabel })
	return out
}

// Unique returns the genes that are unmatched in both alignment directions:
// rows whose query label is not repeated in the query column and whose target
// label is not repeated in the target column. A row surviving both collapses
// appears twice in their union; the repeat is what gets kept.
func Unique(recs []alignment.Record) ([]Gene, error) {
	byQuery := singletons(recs, func(r alignment.Record) string { return r.QueryLabel })
	if len(byQuery) == 0 {
		return nil, fmt.Errorf("%w: every query label aligns more than once", ErrNoUniqueGenes)
	}
	byTarget := singletons(recs, func(r alignment.Record) string { return r.TargetLabel })
	if len(byTarget) == 0 {
		return nil, fmt.Errorf("%w: every target label aligns more than once", ErrNoUniqueGenes)
	}

	union := make([]alignment.Record, 0, len(byQuery)+len(byTarget))
	union = append(union, byQuery...)
	union = append(union, byTarget...)
	sort.SliceStable(union, func(i, j int) bool { return union[i].QueryLabel < union[j].QueryLabel })

	seen := make(map[projection]struct{}, len(union))
	var out []Gene
	for _, r := range union {
		k := project(r)
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			continue
		}
		out = append(out, Gene{Species: r.Query.Species, Gene: r.Query.Gene, Length: r.QueryLen})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no gene is unique in both directions", ErrNoUniqueGenes)
	}
	return out, nil
}
