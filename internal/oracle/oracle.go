// Package oracle is the boundary to the external primer-design engine.
//
// A Designer takes one template sequence and returns the engine's flat
// key/value output in emission order. Primer3 drives the primer3_core
// binary over Boulder-IO; tests substitute their own Designer.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// KV is one key/value pair of oracle output, in emission order.
type KV struct {
	Key   string
	Value string
}

// Request names one template to design primers for.
type Request struct {
	ID       string
	Template string
	// Included region is [IncludedStart, IncludedStart+IncludedLen).
	IncludedStart int
	IncludedLen   int
}

// Settings are the primer constraints forwarded to the engine.
type Settings struct {
	OptSize    int     `yaml:"opt_size"`
	MinSize    int     `yaml:"min_size"`
	MaxSize    int     `yaml:"max_size"`
	OptTm      float64 `yaml:"opt_tm"`
	MinTm      float64 `yaml:"min_tm"`
	MaxTm      float64 `yaml:"max_tm"`
	MaxTmDiff  float64 `yaml:"max_tm_diff"`
	MinGC      float64 `yaml:"min_gc"`
	MaxGC      float64 `yaml:"max_gc"`
	ProductMin int     `yaml:"product_min"`
	ProductMax int     `yaml:"product_max"`
	MaxPolyX   int     `yaml:"max_poly_x"`
	GCClamp    int     `yaml:"gc_clamp"`
	NumReturn  int     `yaml:"num_return"`
}

// DefaultSettings mirrors the command-line defaults.
func DefaultSettings() Settings {
	return Settings{
		OptSize: 20, MinSize: 18, MaxSize: 22,
		OptTm: 60, MinTm: 58, MaxTm: 63, MaxTmDiff: 2,
		MinGC: 40, MaxGC: 60,
		ProductMin: 75, ProductMax: 150,
		MaxPolyX: 3, GCClamp: 1, NumReturn: 4,
	}
}

// Validate checks the bounds are ordered and positive.
func (s Settings) Validate() error {
	switch {
	case s.MinSize <= 0 || s.MinSize > s.OptSize || s.OptSize > s.MaxSize:
		return fmt.Errorf("primer size bounds must satisfy 0 < min <= opt <= max (got %d/%d/%d)", s.MinSize, s.OptSize, s.MaxSize)
	case s.MinTm > s.OptTm || s.OptTm > s.MaxTm:
		return fmt.Errorf("melting temperature bounds must satisfy min <= opt <= max (got %g/%g/%g)", s.MinTm, s.OptTm, s.MaxTm)
	case s.MaxTmDiff < 0:
		return errors.New("max Tm difference must be >= 0")
	case s.MinGC < 0 || s.MaxGC > 100 || s.MinGC > s.MaxGC:
		return fmt.Errorf("GC bounds must satisfy 0 <= min <= max <= 100 (got %g/%g)", s.MinGC, s.MaxGC)
	case s.ProductMin <= 0 || s.ProductMin > s.ProductMax:
		return fmt.Errorf("product size range must satisfy 0 < min <= max (got %d,%d)", s.ProductMin, s.ProductMax)
	case s.MaxPolyX < 0 || s.GCClamp < 0:
		return errors.New("max poly-X and GC clamp must be >= 0")
	case s.NumReturn < 1:
		return errors.New("pairs per locus must be >= 1")
	}
	return nil
}

// Tags renders the settings as engine input tags. Only left and right
// primers are picked.
func (s Settings) Tags() []KV {
	return []KV{
		{"PRIMER_OPT_SIZE", strconv.Itoa(s.OptSize)},
		{"PRIMER_MIN_SIZE", strconv.Itoa(s.MinSize)},
		{"PRIMER_MAX_SIZE", strconv.Itoa(s.MaxSize)},
		{"PRIMER_OPT_TM", ftoa(s.OptTm)},
		{"PRIMER_MIN_TM", ftoa(s.MinTm)},
		{"PRIMER_MAX_TM", ftoa(s.MaxTm)},
		{"PRIMER_PAIR_MAX_DIFF_TM", ftoa(s.MaxTmDiff)},
		{"PRIMER_MIN_GC", ftoa(s.MinGC)},
		{"PRIMER_MAX_GC", ftoa(s.MaxGC)},
		{"PRIMER_MAX_POLY_X", strconv.Itoa(s.MaxPolyX)},
		{"PRIMER_PICK_RIGHT_PRIMER", "1"},
		{"PRIMER_PICK_LEFT_PRIMER", "1"},
		{"PRIMER_PICK_INTERNAL_OLIGO", "0"},
		{"PRIMER_PRODUCT_SIZE_RANGE", fmt.Sprintf("%d-%d", s.ProductMin, s.ProductMax)},
		{"PRIMER_GC_CLAMP", strconv.Itoa(s.GCClamp)},
		{"PRIMER_NUM_RETURN", strconv.Itoa(s.NumReturn)},
	}
}

// Tags renders the sequence tags of a request.
func (r Request) Tags() []KV {
	return []KV{
		{"SEQUENCE_ID", r.ID},
		{"SEQUENCE_TEMPLATE", r.Template},
		{"SEQUENCE_INCLUDED_REGION", fmt.Sprintf("%d,%d", r.IncludedStart, r.IncludedLen)},
	}
}

// Designer designs primer pairs for one template.
type Designer interface {
	Design(ctx context.Context, req Request, s Settings) ([]KV, error)
}

// ErrDesign marks a failure reported by the engine itself.
var ErrDesign = errors.New("primer design failed")

// DesignError carries the engine's own message for one request.
type DesignError struct {
	ID  string
	Msg string
}

func (e *DesignError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.ID, ErrDesign.Error(), e.Msg)
}

func (e *DesignError) Unwrap() error { return ErrDesign }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
