package classify

import (
	"fmt"
	"sort"
	"strings"

	"puppy/internal/alignment"
)

// GroupGene is the folded view of every alignment of one target-species gene.
type GroupGene struct {
	Key     string // query label
	Species string
	Gene    string
	Length  int

	TargetsAligned []string // distinct aligned target species
	TargetsMissing []string // configured targets never hit
	Unintended     []string // distinct non-target species hit

	RawCount        int // aligned-to-target rows
	UnintendedRows  int
	UnintendedCount int // distinct species over the unintended rows

	IdentitySum  float64
	QueryCovSum  float64
	TargetCovSum float64

	Tier      Tier
	Rationale []string
}

// Found is the number of distinct target species the gene aligned to.
func (g GroupGene) Found() int { return len(g.TargetsAligned) }

// Comments joins the rationale blocks the way the tier tables print them.
func (g GroupGene) Comments() string { return strings.Join(g.Rationale, "\n") }

// acc is the running state of one query group.
type acc struct {
	key   string
	label alignment.Label

	aligned    []string
	hit        map[string]bool // configured target -> seen in an aligned row
	unintended []string

	identity, qcov, tcov float64

	lastAlignedLen int
	lastLen        int
	anyAligned     bool
}

func newAcc(r alignment.Record) *acc {
	return &acc{key: r.QueryLabel, label: r.Query, hit: map[string]bool{}}
}

func (a *acc) add(r alignment.Record, targets []string) {
	a.lastLen = r.QueryLen
	name := alignment.SpeciesPrefix(r.TargetLabel)

	matched := false
	for _, t := range targets {
		if strings.Contains(r.TargetLabel, t) {
			a.hit[t] = true
			matched = true
		}
	}
	if !matched {
		a.unintended = append(a.unintended, name)
		return
	}
	a.aligned = append(a.aligned, name)
	a.identity += r.Identity
	a.qcov += r.QueryCov
	a.tcov += r.TargetCov
	a.lastAlignedLen = r.QueryLen
	a.anyAligned = true
}

func (a *acc) finish(targets []string) GroupGene {
	T := len(targets)
	want := float64(T)

	found := distinct(a.aligned)
	raw := len(a.aligned)
	dups := raw > len(found)
	unRows := len(a.unintended)

	g := GroupGene{
		Key:             a.key,
		Species:         a.label.Species,
		Gene:            a.label.Gene,
		Length:          a.lastLen,
		TargetsAligned:  found,
		RawCount:        raw,
		UnintendedRows:  unRows,
		UnintendedCount: len(distinct(a.unintended)),
		IdentitySum:     a.identity,
		QueryCovSum:     a.qcov,
		TargetCovSum:    a.tcov,
	}
	if a.anyAligned {
		g.Length = a.lastAlignedLen
	}
	for _, t := range targets {
		if !a.hit[t] {
			g.TargetsMissing = append(g.TargetsMissing, t)
		}
	}
	isTarget := make(map[string]bool, T)
	for _, t := range targets {
		isTarget[t] = true
	}
	for _, s := range distinct(a.unintended) {
		if !isTarget[s] {
			g.Unintended = append(g.Unintended, s)
		}
	}

	var count string
	switch {
	case raw == T && !dups:
		count = countExact
	case raw > T && !dups:
		count = countExtra
	case raw == T && dups:
		count = countExtraMissed
	case raw < T && !dups:
		count = countShort
	default:
		count = countBad
	}

	// unintended uses "< 1" here while the tier split below uses "> 1".
	unintended := unintendedSome
	if unRows < 1 {
		unintended = unintendedNone
	}
	identity := identityPartial
	if a.identity == 100*want {
		identity = identityPerfect
	}
	qcov := qcovPartial
	if a.qcov == want {
		qcov = qcovFull
	}
	tcov := tcovPartial
	if a.tcov == want {
		tcov = tcovFull
	}
	g.Rationale = []string{count, unintended, identity, qcov, tcov}

	switch {
	case unRows < 1 && raw == T && !dups && a.identity == 100*want && a.qcov == want && a.tcov == want:
		g.Tier = Ideal
	case unRows > 1:
		g.Tier = Undesired
	default:
		g.Tier = Secondary
	}
	return g
}

// Group classifies every gene of the target species. Rows are restricted to
// query labels containing a target name and grouped by query label; groups
// come back in label order.
func Group(recs []alignment.Record, targets []string) ([]GroupGene, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no target species configured", ErrNoConsensusGenes)
	}
	groups := map[string]*acc{}
	for _, r := range recs {
		if !containsAny(r.QueryLabel, targets) {
			continue
		}
		a, ok := groups[r.QueryLabel]
		if !ok {
			a = newAcc(r)
			groups[r.QueryLabel] = a
		}
		a.add(r, targets)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no alignment has a target-species query", ErrNoConsensusGenes)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]GroupGene, 0, len(keys))
	for _, k := range keys {
		out = append(out, groups[k].finish(targets))
	}
	return out, nil
}

// ByTier splits classified genes into their tier buckets, preserving order.
func ByTier(genes []GroupGene) map[Tier][]GroupGene {
	m := make(map[Tier][]GroupGene, len(Tiers))
	for _, g := range genes {
		m[g.Tier] = append(m[g.Tier], g)
	}
	return m
}

func containsAny(s string, subs []string) bool {
	for _, t := range subs {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func distinct(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
