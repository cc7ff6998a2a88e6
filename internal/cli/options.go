// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"puppy/internal/config"
)

// ErrConfiguration marks invalid flags, config files or output locations.
var ErrConfiguration = errors.New("configuration error")

// Configf wraps a message with ErrConfiguration.
func Configf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, a...))
}

// Options holds the parsed command line. Flag values land in Flags; Resolve
// merges the ones the user actually set over the config file.
type Options struct {
	ConfigPath string
	Force      bool
	Flags      config.Config

	productRange []int
}

// overlay copies one flag's value from the command line into the config.
func overlay(name string, d, s *config.Config) {
	switch name {
	case "primers-type":
		d.Mode = s.Mode
	case "target-species":
		d.CDSDir = s.CDSDir
	case "input":
		d.Input = s.Input
	case "outdir":
		d.OutDir = s.OutDir
	case "genes-number":
		d.GenesPerSpecies = s.GenesPerSpecies
	case "primers-number":
		d.Primer.NumReturn = s.Primer.NumReturn
	case "optimal-primer-size":
		d.Primer.OptSize = s.Primer.OptSize
	case "min-primer-size":
		d.Primer.MinSize = s.Primer.MinSize
	case "max-primer-size":
		d.Primer.MaxSize = s.Primer.MaxSize
	case "optimal-primer-tm":
		d.Primer.OptTm = s.Primer.OptTm
	case "min-primer-tm":
		d.Primer.MinTm = s.Primer.MinTm
	case "max-primer-tm":
		d.Primer.MaxTm = s.Primer.MaxTm
	case "max-tm-diff":
		d.Primer.MaxTmDiff = s.Primer.MaxTmDiff
	case "min-primer-gc":
		d.Primer.MinGC = s.Primer.MinGC
	case "max-primer-gc":
		d.Primer.MaxGC = s.Primer.MaxGC
	case "product-size-range":
		d.Primer.ProductMin, d.Primer.ProductMax = s.Primer.ProductMin, s.Primer.ProductMax
	case "max-poly-x":
		d.Primer.MaxPolyX = s.Primer.MaxPolyX
	case "gc-clamp":
		d.Primer.GCClamp = s.Primer.GCClamp
	case "threads":
		d.Threads = s.Threads
	case "primer3-bin":
		d.Primer3.Bin = s.Primer3.Bin
	case "db":
		d.Output.DB = s.Output.DB
	case "metrics-file":
		d.Output.MetricsFile = s.Output.MetricsFile
	case "upload":
		d.Output.Upload = s.Output.Upload
	case "emit":
		d.Output.Emit = s.Output.Emit
	case "verbose":
		d.Log.Verbose = s.Log.Verbose
	case "quiet":
		d.Log.Quiet = s.Log.Quiet
	case "log-format":
		d.Log.Format = s.Log.Format
	}
}

// Register binds every flag to o with the built-in defaults.
func Register(fs *pflag.FlagSet, o *Options) {
	def := config.Default()
	f := &o.Flags

	fs.StringVar(&o.ConfigPath, "config", "", "YAML config file; flags set on the command line win")
	fs.BoolVar(&o.Force, "force", false, "reuse an existing output directory")

	fs.StringVarP(&f.Mode, "primers-type", "p", def.Mode, "design unique or group primers (unique | group)")
	fs.StringVarP(&f.CDSDir, "target-species", "t", def.CDSDir, "directory with the target species CDS files (*.fna)")
	fs.StringVarP(&f.Input, "input", "i", def.Input, "alignment table, or final_genes.tsv from an earlier unique run")
	fs.StringVarP(&f.OutDir, "outdir", "o", def.OutDir, "output directory")
	fs.IntVar(&f.GenesPerSpecies, "genes-number", def.GenesPerSpecies, "genes per species to design primers for")
	fs.IntVar(&f.Primer.NumReturn, "primers-number", def.Primer.NumReturn, "primer pairs to design per gene")

	fs.IntVar(&f.Primer.OptSize, "optimal-primer-size", def.Primer.OptSize, "primer optimal size")
	fs.IntVar(&f.Primer.MinSize, "min-primer-size", def.Primer.MinSize, "primer minimum size")
	fs.IntVar(&f.Primer.MaxSize, "max-primer-size", def.Primer.MaxSize, "primer maximum size")
	fs.Float64Var(&f.Primer.OptTm, "optimal-primer-tm", def.Primer.OptTm, "primer optimal melting temperature")
	fs.Float64Var(&f.Primer.MinTm, "min-primer-tm", def.Primer.MinTm, "primer minimum melting temperature")
	fs.Float64Var(&f.Primer.MaxTm, "max-primer-tm", def.Primer.MaxTm, "primer maximum melting temperature")
	fs.Float64Var(&f.Primer.MaxTmDiff, "max-tm-diff", def.Primer.MaxTmDiff, "maximum Tm difference within a pair")
	fs.Float64Var(&f.Primer.MinGC, "min-primer-gc", def.Primer.MinGC, "primer minimum GC content")
	fs.Float64Var(&f.Primer.MaxGC, "max-primer-gc", def.Primer.MaxGC, "primer maximum GC content")
	fs.IntSliceVarP(&o.productRange, "product-size-range", "s", []int{def.Primer.ProductMin, def.Primer.ProductMax}, "product size range min,max")
	fs.IntVar(&f.Primer.MaxPolyX, "max-poly-x", def.Primer.MaxPolyX, "maximum poly-X run")
	fs.IntVar(&f.Primer.GCClamp, "gc-clamp", def.Primer.GCClamp, "primer 3' GC clamp")

	fs.IntVar(&f.Threads, "threads", def.Threads, "concurrent primer3 runs")
	fs.StringVar(&f.Primer3.Bin, "primer3-bin", def.Primer3.Bin, "primer3_core executable")
	fs.StringVar(&f.Output.DB, "db", "", "record the run in this SQLite database")
	fs.StringVar(&f.Output.MetricsFile, "metrics-file", "", "write run metrics (Prometheus text format)")
	fs.StringVar(&f.Output.Upload, "upload", "", "copy outputs to s3://bucket/prefix or a directory")
	fs.StringVar(&f.Output.Emit, "emit", "", "also print the result on stdout: the primer table, or the classified genes for classify (tsv | json | jsonl)")
	fs.BoolVarP(&f.Log.Verbose, "verbose", "v", false, "debug logging")
	fs.BoolVarP(&f.Log.Quiet, "quiet", "q", false, "warnings and errors only")
	fs.StringVar(&f.Log.Format, "log-format", def.Log.Format, "log format (console | json)")
}

// Resolve loads the config file and overlays the flags that were set.
func (o *Options) Resolve(fs *pflag.FlagSet) (*config.Config, error) {
	if len(o.productRange) != 2 {
		return nil, Configf("--product-size-range wants two values min,max (got %v)", o.productRange)
	}
	o.Flags.Primer.ProductMin, o.Flags.Primer.ProductMax = o.productRange[0], o.productRange[1]

	if o.ConfigPath != "" {
		if _, err := os.Stat(o.ConfigPath); err != nil {
			return nil, Configf("config %s: %v", o.ConfigPath, err)
		}
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, Configf("%v", err)
	}
	fs.Visit(func(fl *pflag.Flag) { overlay(fl.Name, cfg, &o.Flags) })
	return cfg, nil
}

// Validate checks cfg for the named command (design, classify, report).
func Validate(command string, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return Configf("%v", err)
	}
	if cfg.Log.Verbose && cfg.Log.Quiet {
		return Configf("--verbose conflicts with --quiet")
	}
	switch command {
	case "design", "classify":
		if cfg.Input == "" {
			return Configf("--input is required")
		}
		if cfg.CDSDir == "" {
			return Configf("--target-species is required")
		}
	case "report":
		if cfg.CDSDir == "" {
			return Configf("--target-species is required")
		}
	}
	return nil
}
