package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"puppy/internal/pairs"
)

func row(species, seq string, idx int) pairs.Result {
	return pairs.Result{Species: species, Gene: "cds_" + species, GeneSequence: seq, PairIndex: idx}
}

func perLocus() [][]pairs.Result {
	return [][]pairs.Result{
		{row("Ab", "AAAA", 0), row("Ab", "AAAA", 1)},
		{row("Abcd", "AA", 0)},
		{row("Abc", "AAAAAAAA", 0)},
		{row("Abc", "AAA", 0)},
	}
}

func key(r pairs.Result) string { return r.Species + ":" + r.GeneSequence }

func keys(rep Report) []string {
	out := make([]string, len(rep.Rows))
	for i, r := range rep.Rows {
		out[i] = key(r)
	}
	return out
}

func TestAggregateUnique(t *testing.T) {
	rep := Aggregate(Unique, perLocus())
	want := []string{"Abcd:AA", "Abc:AAAAAAAA", "Abc:AAA", "Ab:AAAA", "Ab:AAAA"}
	if d := cmp.Diff(want, keys(rep)); d != "" {
		t.Fatalf("(-want +got):\n%s", d)
	}
	assert.Equal(t, 0, rep.Rows[3].PairIndex, "ties keep locus order")
	assert.Equal(t, 1, rep.Rows[4].PairIndex)
	assert.Equal(t, 3, rep.Loci())
}

func TestAggregateGroup(t *testing.T) {
	rep := Aggregate(Group, perLocus())
	want := []string{"Abc:AAAAAAAA", "Ab:AAAA", "Ab:AAAA", "Abc:AAA", "Abcd:AA"}
	if d := cmp.Diff(want, keys(rep)); d != "" {
		t.Fatalf("(-want +got):\n%s", d)
	}
}

func TestSortIdempotent(t *testing.T) {
	for _, m := range []Mode{Unique, Group} {
		rep := Aggregate(m, perLocus())
		again := append([]pairs.Result(nil), rep.Rows...)
		Sort(m, again)
		assert.Equal(t, rep.Rows, again, "mode %s", m)
	}
}

func TestAggregateEmpty(t *testing.T) {
	rep := Aggregate(Unique, [][]pairs.Result{nil, {}})
	assert.Empty(t, rep.Rows)
	assert.Equal(t, 0, rep.Loci())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("group")
	require.NoError(t, err)
	assert.Equal(t, "GroupPrimerTable.tsv", m.TableName())
	assert.Equal(t, "UniquePrimerTable.tsv", Unique.TableName())
	_, err = ParseMode("shared")
	assert.Error(t, err)
}
