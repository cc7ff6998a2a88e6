// Package pairs turns the oracle's flat key/value output into primer pair
// rows carrying their locus context.
package pairs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"puppy/internal/oracle"
)

var (
	ErrTruncatedPairRecord = errors.New("truncated primer pair record")
	ErrMalformedPairValue  = errors.New("malformed primer pair value")
)

// PairError reports a parse failure for one pair of one locus.
type PairError struct {
	Kind  error
	Locus string
	Index int
	Msg   string
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%s pair %d: %s: %s", e.Locus, e.Index, e.Kind.Error(), e.Msg)
}

func (e *PairError) Unwrap() error { return e.Kind }

// Locus is the gene a set of pairs was designed for.
type Locus struct {
	Species  string
	Gene     string
	Sequence string
}

func (l Locus) String() string { return l.Species + "/" + l.Gene }

// Result is one designed primer pair.
type Result struct {
	Species      string
	Gene         string
	GeneSequence string
	PairIndex    int
	PairPenalty  float64
	AmpliconSize int

	Forward    string
	Reverse    string
	ForwardLen int
	ReverseLen int
	ForwardTm  float64
	ReverseTm  float64
	ForwardGC  float64
	ReverseGC  float64
}

type field uint16

const (
	fPenalty field = 1 << iota
	fLeftSeq
	fRightSeq
	fLeftTm
	fRightTm
	fLeftGC
	fRightGC

	fAll = fPenalty | fLeftSeq | fRightSeq | fLeftTm | fRightTm | fLeftGC | fRightGC
)

// Parse collects at most n pairs from kvs in order. Only keys for the pair
// currently being filled are read; the PRODUCT_SIZE key closes a pair. A pair
// left incomplete yields the pairs closed so far and ErrTruncatedPairRecord.
func Parse(kvs []oracle.KV, n int, locus Locus) ([]Result, error) {
	var (
		out   []Result
		cur   Result
		have  field
		count int
	)
	fail := func(kind error, msg string) ([]Result, error) {
		return out, &PairError{Kind: kind, Locus: locus.String(), Index: count, Msg: msg}
	}

	for _, kv := range kvs {
		if count > n-1 {
			break
		}
		side, idx, name, ok := splitKey(kv.Key)
		if !ok || idx != count {
			continue
		}
		v := strings.TrimSpace(kv.Value)
		var err error
		switch side + "_" + name {
		case "PAIR_PENALTY":
			cur.PairPenalty, err = strconv.ParseFloat(v, 64)
			have |= fPenalty
		case "LEFT_SEQUENCE":
			cur.Forward, cur.ForwardLen = v, len(v)
			have |= fLeftSeq
		case "RIGHT_SEQUENCE":
			cur.Reverse, cur.ReverseLen = v, len(v)
			have |= fRightSeq
		case "LEFT_TM":
			cur.ForwardTm, err = strconv.ParseFloat(v, 64)
			have |= fLeftTm
		case "RIGHT_TM":
			cur.ReverseTm, err = strconv.ParseFloat(v, 64)
			have |= fRightTm
		case "LEFT_GC_PERCENT":
			cur.ForwardGC, err = strconv.ParseFloat(v, 64)
			have |= fLeftGC
		case "RIGHT_GC_PERCENT":
			cur.ReverseGC, err = strconv.ParseFloat(v, 64)
			have |= fRightGC
		case "PAIR_PRODUCT_SIZE":
			if cur.AmpliconSize, err = strconv.Atoi(v); err != nil {
				return fail(ErrMalformedPairValue, fmt.Sprintf("%s=%q", kv.Key, kv.Value))
			}
			if have != fAll {
				return fail(ErrTruncatedPairRecord, "product size seen before all pair fields")
			}
			cur.Species, cur.Gene, cur.GeneSequence = locus.Species, locus.Gene, locus.Sequence
			cur.PairIndex = count
			out = append(out, cur)
			cur, have = Result{}, 0
			count++
			continue
		default:
			continue
		}
		if err != nil {
			return fail(ErrMalformedPairValue, fmt.Sprintf("%s=%q", kv.Key, kv.Value))
		}
	}
	if have != 0 {
		return fail(ErrTruncatedPairRecord, "input ended before the pair's product size")
	}
	return out, nil
}

// splitKey splits PRIMER_{LEFT|RIGHT|PAIR}_{i}_{FIELD}.
func splitKey(key string) (side string, idx int, name string, ok bool) {
	rest, found := strings.CutPrefix(key, "PRIMER_")
	if !found {
		return "", 0, "", false
	}
	side, rest, found = strings.Cut(rest, "_")
	if !found || (side != "LEFT" && side != "RIGHT" && side != "PAIR") {
		return "", 0, "", false
	}
	num, name, found := strings.Cut(rest, "_")
	if !found {
		return "", 0, "", false
	}
	idx, err := strconv.Atoi(num)
	if err != nil || idx < 0 {
		return "", 0, "", false
	}
	return side, idx, name, true
}
