// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"puppy/internal/classify"
	"puppy/internal/cli"
	"puppy/internal/version"
	"puppy/internal/writers"
)

// errNoPrimers means the oracle produced no pair for any locus.
var errNoPrimers = errors.New("no primer pairs designed")

// Exit codes.
const (
	exitOK        = 0
	exitNothing   = 1
	exitConfig    = 2
	exitIO        = 3
	exitCancelled = 130
)

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitCancelled
	case errors.Is(err, cli.ErrConfiguration):
		return exitConfig
	case errors.Is(err, errNoPrimers),
		errors.Is(err, classify.ErrNoUniqueGenes),
		errors.Is(err, classify.ErrNoConsensusGenes):
		return exitNothing
	case writers.IsBrokenPipe(err):
		return exitOK
	}
	return exitIO
}

func newRoot(opts *cli.Options) *cobra.Command {
	root := &cobra.Command{
		Use:   "puppy",
		Short: "Design unique or group-specific PCR primers from CDS alignments",
		Long: "puppy classifies genes from an all-vs-all CDS alignment table, picks the\n" +
			"loci that single out one species (unique) or cover a whole group (group),\n" +
			"and runs primer3 on each of them.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return cli.Configf("unknown command %q", args[0])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("puppy version {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return cli.Configf("%v", err)
	})
	cli.Register(root.PersistentFlags(), opts)

	root.AddCommand(
		newDesignCmd(opts),
		newClassifyCmd(opts),
		newReportCmd(opts),
		newRunsCmd(opts),
		newVersionCmd(),
	)
	return root
}

// RunContext executes the command line and returns the exit status.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	var opts cli.Options
	root := newRoot(&opts)
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(parent)
	code := exitCode(err)
	if err != nil && code != exitOK && code != exitCancelled {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		if code == exitConfig {
			_, _ = fmt.Fprintln(stderr, "run 'puppy --help' for usage")
		}
	}
	if code == exitOK && parent.Err() != nil {
		code = exitCancelled
	}
	return code
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return cli.Configf("%s takes no positional arguments (got %q)", cmd.Name(), args[0])
	}
	return nil
}
