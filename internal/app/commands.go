package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"puppy/internal/classify"
	"puppy/internal/cli"
	"puppy/internal/metrics"
	"puppy/internal/oracle"
	"puppy/internal/pairs"
	"puppy/internal/pipeline"
	"puppy/internal/report"
	"puppy/internal/seqstore"
	"puppy/internal/store"
	"puppy/internal/version"
	"puppy/internal/writers"
)

func newDesignCmd(opts *cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "design",
		Short: "Classify genes, run primer3 on the chosen loci and write the primer table",
		Example: "  puppy design -p unique -i ResultDB.tsv -t cds/ -o out\n" +
			"  puppy design -p group -i ResultDB.tsv -t cds/ --genes-number 3 --emit jsonl",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.Resolve(cmd.Flags())
			if err != nil {
				return err
			}
			r, err := newRunner("design", cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return r.design(cmd.Context(), opts.Force)
		},
	}
}

func (r *runner) design(ctx context.Context, force bool) error {
	if err := r.createOutDir(force); err != nil {
		return err
	}
	if err := r.openSequences(true); err != nil {
		return err
	}
	if err := r.openDB(ctx); err != nil {
		return err
	}
	loci, rep, err := r.designLoci(ctx)
	return r.finish(ctx, err, len(loci), rep.Rows)
}

func (r *runner) designLoci(ctx context.Context) ([]classify.Gene, report.Report, error) {
	var (
		loci []classify.Gene
		err  error
	)
	switch r.mode {
	case report.Unique:
		var genes []classify.Gene
		if genes, err = r.uniqueGenes(); err == nil {
			loci, err = r.uniqueLoci(genes)
		}
	case report.Group:
		var genes []classify.GroupGene
		if genes, err = r.groupGenes(); err == nil {
			loci, err = r.groupLoci(genes)
		}
	}
	if err != nil {
		return nil, report.Report{}, err
	}

	r.log.Info("designing primers", "loci", len(loci), "threads", r.cfg.Threads)
	out, err := pipeline.Run(ctx, pipeline.Config{
		Threads:  r.cfg.Threads,
		Settings: r.cfg.Primer,
		KVDir:    r.out(KVDirName),
	}, loci, pipeline.Deps{
		Store:   r.seqs,
		Oracle:  oracle.Primer3{Bin: r.cfg.Primer3.Bin, ThermoPath: r.cfg.Primer3.ThermoPath},
		Log:     r.log,
		Metrics: r.met,
	})
	if err != nil {
		return loci, report.Report{}, err
	}
	if n := len(out.Skipped); n > 0 {
		r.log.Warn("skipped loci", "count", n, "loci", skipNames(out.Skipped))
	}
	if n := len(out.Truncated); n > 0 {
		r.log.Warn("loci with truncated primer3 output", "count", n, "loci", skipNames(out.Truncated))
	}
	if n := len(out.Malformed); n > 0 {
		r.log.Warn("loci with malformed primer3 values", "count", n, "loci", skipNames(out.Malformed))
	}

	rep := report.Aggregate(r.mode, out.PerLocus)
	if len(rep.Rows) == 0 {
		return loci, rep, fmt.Errorf("%w for %d loci", errNoPrimers, len(loci))
	}
	r.summarize(rep, r.seqs.Species())
	return loci, rep, r.writeReport(rep)
}

func skipNames(s []pipeline.Skip) []string {
	out := make([]string, len(s))
	for i, k := range s {
		out[i] = k.Species + "/" + k.Gene
	}
	return out
}

func newClassifyCmd(opts *cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Write the gene classification tables without designing primers",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.Resolve(cmd.Flags())
			if err != nil {
				return err
			}
			r, err := newRunner("classify", cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := r.createOutDir(opts.Force); err != nil {
				return err
			}
			if err := r.openSequences(true); err != nil {
				return err
			}
			if err := r.openDB(ctx); err != nil {
				return err
			}
			err = r.classify()
			return r.finish(ctx, err, 0, nil)
		},
	}
}

// classify writes the mode's gene tables and, with --emit, prints the
// classified genes on stdout.
func (r *runner) classify() error {
	emit := r.cfg.Output.Emit
	switch r.mode {
	case report.Group:
		genes, err := r.groupGenes()
		if err != nil || emit == "" {
			return err
		}
		return r.emitted(writers.EmitGroupGenes(emit, r.stdout, genes))
	default:
		genes, err := r.uniqueGenes()
		if err != nil || emit == "" {
			return err
		}
		return r.emitted(writers.EmitGenes(emit, r.stdout, genes))
	}
}

func newReportCmd(opts *cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Rebuild the primer table from an existing outdir's primer3_files",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.Resolve(cmd.Flags())
			if err != nil {
				return err
			}
			r, err := newRunner("report", cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := r.openSequences(false); err != nil {
				return err
			}
			if err := r.openDB(ctx); err != nil {
				return err
			}
			rep, err := r.rebuild()
			if err != nil {
				return r.finish(ctx, err, 0, nil)
			}
			return r.finish(ctx, r.writeReport(rep), rep.Loci(), rep.Rows)
		},
	}
}

// rebuild parses every primer3_files/<species>_<gene>.tsv back into pairs.
func (r *runner) rebuild() (report.Report, error) {
	dir := r.out(KVDirName)
	files, err := filepath.Glob(filepath.Join(dir, "*.tsv"))
	if err != nil {
		return report.Report{}, err
	}
	if len(files) == 0 {
		return report.Report{}, cli.Configf("%s: no primer3 output files", dir)
	}

	perLocus := make([][]pairs.Result, 0, len(files))
	for _, f := range files {
		species, gene, ok := oracle.SplitKVFileName(f)
		if !ok {
			r.log.Warn("skipping file with an unrecognised name", "file", f)
			continue
		}
		l := r.log.With("species", species, "gene", gene)
		seq, err := r.seqs.Lookup(species, gene)
		if err != nil {
			l.Warn("skipping locus", "err", err)
			r.met.Locus(seqstoreOutcome(err))
			continue
		}
		kvs, err := oracle.ReadKVFile(f)
		if err != nil {
			return report.Report{}, err
		}
		res, err := pairs.Parse(kvs, r.cfg.Primer.NumReturn, pairs.Locus{Species: species, Gene: gene, Sequence: seq})
		if err != nil {
			l.Warn("keeping partial primer3 output", "pairs", len(res), "err", err)
		}
		r.met.Locus(pipeline.ParseOutcome(len(res), err))
		r.met.Pairs(len(res))
		perLocus = append(perLocus, res)
	}
	rep := report.Aggregate(r.mode, perLocus)
	if len(rep.Rows) == 0 {
		return rep, fmt.Errorf("%w in %s", errNoPrimers, dir)
	}
	r.summarize(rep, r.seqs.Species())
	return rep, nil
}

func newRunsCmd(opts *cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List the runs recorded in the --db database",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.Resolve(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Output.DB == "" {
				return cli.Configf("--db is required")
			}
			if _, err := os.Stat(cfg.Output.DB); err != nil {
				return cli.Configf("database %s: %v", cfg.Output.DB, err)
			}
			db, err := store.Open(cfg.Output.DB)
			if err != nil {
				return err
			}
			defer db.Close()
			runs, err := db.Runs(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMODE\tSTATUS\tSTARTED\tLOCI\tPAIRS\tOUTDIR")
			for _, run := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					run.ID, run.Mode, run.Status, run.Started.Format(time.RFC3339), run.Loci, run.Pairs, run.OutDir)
			}
			return tw.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "puppy version %s\n", version.Version)
			return err
		},
	}
}

func seqstoreOutcome(err error) string {
	if errors.Is(err, seqstore.ErrUnresolvedSequence) {
		return metrics.Unresolved
	}
	return metrics.Failed
}
