// Package cli implements the ipalize command: translate Merriam-Webster
// pronunciations given as arguments, on stdin, or in a batch file, either
// locally or through a running translator's RPC endpoint.
package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Flags holds the command-line options.
type Flags struct {
	BatchFile     string
	Remote        string
	Tokens        bool
	QuietWarnings bool
	Strict        bool
	Concurrency   int
	Timeout       time.Duration
	LogLevel      string
}

// NewFlags returns Flags with defaults applied.
func NewFlags() *Flags {
	return &Flags{
		Concurrency: 4,
		Timeout:     5 * time.Second,
		LogLevel:    "warn",
	}
}

// CreateRootCommand creates the ipalize root command bound to flags.
func CreateRootCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipalize [pronunciation...]",
		Short: "Merriam-Webster pronunciation to IPA translator",
		Long: `ipalize rewrites Merriam-Webster pronunciation respellings in IPA.

Arguments are joined with spaces and translated as one input. Without
arguments every non-blank line of stdin is translated.

Examples:
  ipalize 'ˈshu̇-gər'                 # translate one pronunciation
  ipalize --tokens 'ˈȯi-stər'         # show the token segmentation
  ipalize --batch data/testdata.txt    # "input ==> output" report
  ipalize --remote localhost:9000 kat  # use a running translator`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, args, flags)
		},
	}
	setupFlags(cmd, flags)
	return cmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Translate every line of a file and print a report")
	cmd.Flags().StringVar(&flags.Remote, "remote", "", "Translator RPC address (host:port); translate locally when empty")
	cmd.Flags().BoolVar(&flags.Tokens, "tokens", false, "Print the token segmentation below each translation")
	cmd.Flags().BoolVarP(&flags.QuietWarnings, "quiet-warnings", "q", false, "Do not report non-conforming input on stderr")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "Exit with an error when any input did not fully conform")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", flags.Concurrency, "Parallel translations in batch mode")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Per-call timeout for --remote")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	cmd.MarkFlagsMutuallyExclusive("batch", "tokens")
}
