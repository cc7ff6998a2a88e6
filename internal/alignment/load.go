package alignment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"puppy/internal/fasta"
)

// LoadFile reads an alignment table from path ('-' = stdin, .gz accepted).
func LoadFile(path string) ([]Record, error) {
	rc, err := fasta.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, err := Load(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Load parses every row of r. The first bad row aborts the load.
func Load(r io.Reader) ([]Record, error) {
	cr := newTSVReader(r)
	var out []Record
	for {
		f, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, malformedf(pe.Line, "%v", pe.Err)
		}
		if err != nil {
			return nil, err
		}
		ln, _ := cr.FieldPos(0)
		if len(f) == 1 && strings.TrimSpace(f[0]) == "" {
			continue
		}
		rec, err := parseRow(ln, f)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// newTSVReader reads tab-separated rows of any width. Quotes inside
// unquoted cells are kept literally.
func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func parseRow(ln int, f []string) (Record, error) {
	if len(f) != NumColumns {
		return Record{}, malformedf(ln, "want %d columns, got %d", NumColumns, len(f))
	}
	q, err := ParseLabel(f[0])
	if err != nil {
		return Record{}, malformedf(ln, "query: %v", err)
	}
	t, err := ParseLabel(f[1])
	if err != nil {
		return Record{}, malformedf(ln, "target: %v", err)
	}
	rec := Record{QueryLabel: f[0], TargetLabel: f[1], Query: q, Target: t}

	ints := []*int{
		&rec.QueryLen, &rec.TargetLen, &rec.AlignLen,
		&rec.QueryStart, &rec.QueryEnd, &rec.TargetStart, &rec.TargetEnd,
	}
	for i, dst := range ints {
		col := 2 + i
		v, err := strconv.Atoi(strings.TrimSpace(f[col]))
		if err != nil {
			return Record{}, malformedf(ln, "column %s: %q is not an integer", Columns[col], f[col])
		}
		*dst = v
	}
	floats := []*float64{&rec.Identity, &rec.QueryCov, &rec.TargetCov, &rec.EValue}
	for i, dst := range floats {
		col := 9 + i
		v, err := strconv.ParseFloat(strings.TrimSpace(f[col]), 64)
		if err != nil || math.IsNaN(v) {
			return Record{}, malformedf(ln, "column %s: %q is not a number", Columns[col], f[col])
		}
		*dst = v
	}
	return rec, nil
}
