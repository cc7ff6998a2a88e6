// Package report merges per-locus primer pairs into the final table.
package report

import (
	"fmt"
	"sort"

	"puppy/internal/pairs"
)

// Mode selects the workflow a report was produced by.
type Mode string

const (
	Unique Mode = "unique"
	Group  Mode = "group"
)

// ParseMode accepts "unique" or "group".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Unique, Group:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown primers type %q (want unique or group)", s)
}

// TableName is the primer table file written for the mode.
func (m Mode) TableName() string {
	if m == Group {
		return "GroupPrimerTable.tsv"
	}
	return "UniquePrimerTable.tsv"
}

// Report is the ordered set of designed pairs.
type Report struct {
	Mode Mode
	Rows []pairs.Result
}

// Loci counts distinct (species, gene) pairs present in the report.
func (r Report) Loci() int {
	seen := map[[2]string]struct{}{}
	for _, p := range r.Rows {
		seen[[2]string{p.Species, p.Gene}] = struct{}{}
	}
	return len(seen)
}

// Aggregate concatenates per-locus pairs in locus order and sorts them.
func Aggregate(mode Mode, perLocus [][]pairs.Result) Report {
	var rows []pairs.Result
	for _, l := range perLocus {
		rows = append(rows, l...)
	}
	Sort(mode, rows)
	return Report{Mode: mode, Rows: rows}
}

// Sort orders rows in place by string length, longest first: species then
// gene sequence in unique mode, gene sequence then species in group mode.
// Ties keep their relative order.
func Sort(mode Mode, rows []pairs.Result) {
	first := func(p pairs.Result) int { return len(p.Species) }
	second := func(p pairs.Result) int { return len(p.GeneSequence) }
	if mode == Group {
		first, second = second, first
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if first(a) != first(b) {
			return first(a) > first(b)
		}
		return second(a) > second(b)
	})
}
