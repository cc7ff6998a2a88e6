// Package alignment loads the flat pairwise alignment table produced by the
// all-vs-all CDS search (13 tab-separated columns, no header) into immutable
// Records with species/gene identifiers derived from the composite labels.
package alignment

// Columns is the fixed column order of the alignment table.
var Columns = [...]string{
	"query", "target", "qlen", "tlen", "alnlen",
	"qstart", "qend", "tstart", "tend",
	"pident", "qcov", "tcov", "evalue",
}

// NumColumns is the expected field count of every row.
const NumColumns = len(Columns)

// Record is one alignment row. Identity is a percentage in [0,100]; the
// coverages are fractions in [0,1].
type Record struct {
	QueryLabel  string
	TargetLabel string
	Query       Label
	Target      Label

	QueryLen    int
	TargetLen   int
	AlignLen    int
	QueryStart  int
	QueryEnd    int
	TargetStart int
	TargetEnd   int

	Identity  float64
	QueryCov  float64
	TargetCov float64
	EValue    float64
}
