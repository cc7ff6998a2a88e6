package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"puppy/internal/classify"
	"puppy/internal/logging"
	"puppy/internal/metrics"
	"puppy/internal/oracle"
	"puppy/internal/pairs"
	"puppy/internal/seqstore"
)

// Config controls the design map.
type Config struct {
	Threads  int // concurrent oracle calls (>=1)
	Settings oracle.Settings
	// KVDir receives one raw oracle file per locus; empty disables it.
	KVDir string
}

// Deps are the collaborators of a run. Log and Metrics may be nil.
type Deps struct {
	Store   seqstore.Store
	Oracle  oracle.Designer
	Log     *logging.Logger
	Metrics *metrics.Metrics
}

// Skip records a locus that produced no usable pairs, or fewer than it
// should have.
type Skip struct {
	Species string
	Gene    string
	Err     error
}

// Outcome is the result of a run. PerLocus is indexed like the input.
type Outcome struct {
	PerLocus  [][]pairs.Result
	Skipped   []Skip // unresolved sequence or oracle failure
	Truncated []Skip // output ended inside a pair; earlier pairs kept
	Malformed []Skip // unparsable value; earlier pairs kept
}

// Pairs is the total number of parsed pairs.
func (o Outcome) Pairs() int {
	n := 0
	for _, l := range o.PerLocus {
		n += len(l)
	}
	return n
}

// Run designs primers for every locus. Recoverable per-locus failures are
// logged and collected; the first fatal error (I/O, missing oracle binary,
// cancellation) stops the map and is returned.
func Run(ctx context.Context, cfg Config, loci []classify.Gene, deps Deps) (Outcome, error) {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	log := deps.Log
	if log == nil {
		log = logging.Nop()
	}
	if deps.Store == nil || deps.Oracle == nil {
		return Outcome{}, errors.New("pipeline: store and oracle are required")
	}
	if cfg.KVDir != "" {
		if err := os.MkdirAll(cfg.KVDir, 0o755); err != nil {
			return Outcome{}, err
		}
	}

	out := Outcome{PerLocus: make([][]pairs.Result, len(loci))}
	var mu sync.Mutex
	skip := func(list *[]Skip, s Skip) {
		mu.Lock()
		*list = append(*list, s)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)

	for i, locus := range loci {
		i, locus := i, locus
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			l := log.With("species", locus.Species, "gene", locus.Gene)

			seq, err := deps.Store.Lookup(locus.SeqSpecies(), locus.Gene)
			if errors.Is(err, seqstore.ErrUnresolvedSequence) {
				l.Warn("skipping locus: sequence not found", "err", err)
				deps.Metrics.Locus(metrics.Unresolved)
				skip(&out.Skipped, Skip{locus.Species, locus.Gene, err})
				return nil
			}
			if err != nil {
				return err
			}

			req := oracle.Request{
				ID:          locus.Species + "_" + locus.Gene,
				Template:    seq,
				IncludedLen: includedLen(locus.Length, len(seq)),
			}
			start := time.Now()
			kvs, err := deps.Oracle.Design(gctx, req, cfg.Settings)
			deps.Metrics.ObserveOracle(time.Since(start))
			if errors.Is(err, oracle.ErrDesign) {
				l.Warn("skipping locus: primer design failed", "err", err)
				deps.Metrics.Locus(metrics.Failed)
				skip(&out.Skipped, Skip{locus.Species, locus.Gene, err})
				return nil
			}
			if err != nil {
				return err
			}

			if cfg.KVDir != "" {
				path := filepath.Join(cfg.KVDir, oracle.KVFileName(locus.Species, locus.Gene))
				if err := oracle.WriteKVFile(path, kvs); err != nil {
					return err
				}
			}

			res, err := pairs.Parse(kvs, cfg.Settings.NumReturn, pairs.Locus{Species: locus.Species, Gene: locus.Gene, Sequence: seq})
			outcome := ParseOutcome(len(res), err)
			switch outcome {
			case metrics.Truncated:
				l.Warn("keeping partial oracle output", "pairs", len(res), "err", err)
				skip(&out.Truncated, Skip{locus.Species, locus.Gene, err})
			case metrics.Malformed:
				l.Warn("keeping pairs before a malformed oracle value", "pairs", len(res), "err", err)
				skip(&out.Malformed, Skip{locus.Species, locus.Gene, err})
			case metrics.Empty:
				l.Debug("oracle returned no pairs")
			default:
				l.Debug("designed", "pairs", len(res))
			}
			deps.Metrics.Locus(outcome)
			deps.Metrics.Pairs(len(res))
			out.PerLocus[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		return out, fmt.Errorf("design: %w", err)
	}
	return out, nil
}

// ParseOutcome names the metrics outcome of parsing one locus: n pairs
// were kept and err is what pairs.Parse returned.
func ParseOutcome(n int, err error) string {
	switch {
	case errors.Is(err, pairs.ErrMalformedPairValue):
		return metrics.Malformed
	case err != nil:
		return metrics.Truncated
	case n == 0:
		return metrics.Empty
	}
	return metrics.Designed
}

// includedLen is the gene length from the alignment table, clamped to the
// sequence actually found.
func includedLen(geneLen, seqLen int) int {
	if geneLen <= 0 || geneLen > seqLen {
		return seqLen
	}
	return geneLen
}
