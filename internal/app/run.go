package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"puppy/internal/blob"
	"puppy/internal/cli"
	"puppy/internal/config"
	"puppy/internal/logging"
	"puppy/internal/metrics"
	"puppy/internal/pairs"
	"puppy/internal/report"
	"puppy/internal/seqstore"
	"puppy/internal/store"
	"puppy/internal/writers"
)

// KVDirName is the per-locus oracle output directory inside the outdir.
const KVDirName = "primer3_files"

// runner carries one command invocation: its settings, logger, metrics and
// the optional run database.
type runner struct {
	cfg    *config.Config
	mode   report.Mode
	log    *logging.Logger
	met    *metrics.Metrics
	stdout io.Writer

	id      uuid.UUID
	started time.Time
	db      *store.Store
	seqs    *seqstore.Dir

	genes []store.GeneRow
}

func newRunner(command string, cfg *config.Config, stdout, stderr io.Writer) (*runner, error) {
	if err := cli.Validate(command, cfg); err != nil {
		return nil, err
	}
	mode, err := report.ParseMode(cfg.Mode)
	if err != nil {
		return nil, cli.Configf("%v", err)
	}
	if e := cfg.Output.Emit; e != "" && !slices.Contains(writers.Formats(), e) {
		return nil, cli.Configf("unknown --emit format %q (want one of %s)", e, strings.Join(writers.Formats(), ", "))
	}
	log, err := logging.New(stderr, logging.Options{
		Format:  cfg.Log.Format,
		Verbose: cfg.Log.Verbose,
		Quiet:   cfg.Log.Quiet,
	})
	if err != nil {
		return nil, cli.Configf("%v", err)
	}
	return &runner{
		cfg:     cfg,
		mode:    mode,
		log:     log.With("run", command),
		met:     metrics.New(),
		stdout:  stdout,
		id:      uuid.New(),
		started: time.Now(),
	}, nil
}

func (r *runner) out(name string) string { return filepath.Join(r.cfg.OutDir, name) }

// createOutDir refuses to reuse an existing output directory unless force
// is set, then creates it with its primer3_files subdirectory.
func (r *runner) createOutDir(force bool) error {
	if _, err := os.Stat(r.cfg.OutDir); err == nil && !force {
		return cli.Configf("output folder %s already exists; change --outdir, delete it or pass --force", r.cfg.OutDir)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.MkdirAll(r.out(KVDirName), 0o755)
}

// openSequences indexes the CDS directory and writes gene_counts.tsv.
func (r *runner) openSequences(writeCounts bool) error {
	d, err := seqstore.Open(r.cfg.CDSDir)
	if err != nil {
		return cli.Configf("target species: %v", err)
	}
	r.seqs = d
	r.log.Info("indexed target species", "dir", r.cfg.CDSDir, "species", len(d.Files()))
	if !writeCounts {
		return nil
	}
	counts, err := d.Counts()
	if err != nil {
		return err
	}
	r.log.Info("counted genes per target species", "file", writers.GeneCountsFile)
	return writers.WriteFile(r.out(writers.GeneCountsFile), func(w io.Writer) error {
		return writers.WriteGeneCounts(w, counts)
	})
}

// openDB starts a run record when --db is set.
func (r *runner) openDB(ctx context.Context) error {
	if r.cfg.Output.DB == "" {
		return nil
	}
	db, err := store.Open(r.cfg.Output.DB)
	if err != nil {
		return err
	}
	if _, err := db.BeginRun(ctx, store.Run{
		ID: r.id, Mode: string(r.mode), Input: r.cfg.Input, CDSDir: r.cfg.CDSDir,
		OutDir: r.cfg.OutDir, Started: r.started,
	}); err != nil {
		_ = db.Close()
		return err
	}
	r.db = db
	return nil
}

func (r *runner) noteGenes(bucket string, n int, rows func(i int) store.GeneRow) {
	r.met.Genes(bucket, n)
	for i := 0; i < n; i++ {
		row := rows(i)
		row.Bucket = bucket
		r.genes = append(r.genes, row)
	}
}

// writeReport writes the mode's primer table and, with --emit, prints it.
func (r *runner) writeReport(rep report.Report) error {
	name := r.mode.TableName()
	if err := writers.WriteFile(r.out(name), func(w io.Writer) error {
		return writers.WriteReport(w, rep)
	}); err != nil {
		return err
	}
	r.log.Info("wrote primer table", "file", name, "pairs", len(rep.Rows), "loci", rep.Loci())
	if r.cfg.Output.Emit == "" {
		return nil
	}
	return r.emitted(writers.EmitReport(r.cfg.Output.Emit, r.stdout, rep))
}

// emitted drops the error of a stdout consumer that went away.
func (r *runner) emitted(err error) error {
	if err != nil && writers.IsBrokenPipe(err) {
		r.log.Debug("stdout closed", "err", err)
		return nil
	}
	return err
}

// summarize logs which target species ended up with primers.
func (r *runner) summarize(rep report.Report, wanted []string) {
	have := map[string]bool{}
	for _, p := range rep.Rows {
		have[p.Species] = true
	}
	var without []string
	for _, s := range wanted {
		found := false
		for sp := range have {
			if strings.Contains(sp, s) {
				found = true
				break
			}
		}
		if !found {
			without = append(without, s)
		}
	}
	r.log.Info("compiled report", "species", fmt.Sprintf("%d/%d", len(wanted)-len(without), len(wanted)))
	if len(without) > 0 {
		sort.Strings(without)
		r.log.Warn("could not design primers for some species", "species", strings.Join(without, ", "))
	}
}

// finish records the run outcome, writes metrics and uploads the outdir.
// The first error wins; later steps still run.
func (r *runner) finish(ctx context.Context, runErr error, loci int, rows []pairs.Result) error {
	status := store.StatusDone
	switch code := exitCode(runErr); code {
	case exitOK:
	case exitNothing:
		status = store.StatusNoResult
	default:
		status = store.StatusFailed
	}

	// Bookkeeping must survive a cancelled command context.
	bctx := context.WithoutCancel(ctx)
	errs := []error{runErr}
	if r.db != nil {
		if len(r.genes) > 0 {
			errs = append(errs, r.db.RecordGenes(bctx, r.id, r.genes))
		}
		if len(rows) > 0 {
			errs = append(errs, r.db.RecordPairs(bctx, r.id, rows))
		}
		errs = append(errs, r.db.FinishRun(bctx, r.id, status, loci, len(rows)))
		errs = append(errs, r.db.Close())
		r.log.Debug("recorded run", "db", r.cfg.Output.DB, "status", status)
	}
	if p := r.cfg.Output.MetricsFile; p != "" {
		errs = append(errs, r.met.WriteFile(p))
	}
	if r.cfg.Output.Upload != "" && runErr == nil {
		errs = append(errs, r.upload(ctx))
	}
	r.log.Info("done", "id", r.id, "elapsed", time.Since(r.started).Round(time.Millisecond))
	r.log.Sync()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) upload(ctx context.Context) error {
	t, err := blob.ParseTarget(r.cfg.Output.Upload)
	if err != nil {
		return cli.Configf("%v", err)
	}
	st, err := blob.Open(ctx, t, blob.S3Config{
		Region:       r.cfg.S3.Region,
		Endpoint:     r.cfg.S3.Endpoint,
		UsePathStyle: r.cfg.S3.UsePathStyle,
		AccessKey:    r.cfg.S3.AccessKey,
		SecretKey:    r.cfg.S3.SecretKey,
	})
	if err != nil {
		return err
	}
	prefix := path.Join(t.KeyPrefix(), r.id.String())
	n, err := blob.UploadDir(ctx, st, r.cfg.OutDir, prefix)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	r.log.Info("uploaded outputs", "to", st.Location(), "prefix", prefix, "files", n)
	return nil
}
