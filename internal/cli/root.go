// Package cli implements the fakenews terminal client. It drives the same
// submission controller as the web frontend and prints results with the
// shared view models.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lueurxax/fakenews-web/internal/platform/config"
	"github.com/lueurxax/fakenews-web/internal/snapshot"
)

// cliSessionID owns the terminal client's evidence slot.
const cliSessionID = "cli"

// Output formats.
const (
	outputHuman = "human"
	outputJSON  = "json"
)

type rootOptions struct {
	analysisURL string
	timeout     time.Duration
	snapshotDir string
	output      string
	verbose     bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "fakenews-cli",
		Short: "Check news stories against the fake news analysis service",
		Long: `fakenews-cli sends a news text and its image to the analysis service and
prints the assessment, then keeps the fact-check sources for later review.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.complete(cmd)
		},
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.analysisURL, "url", "", "Analysis endpoint (default from ANALYSIS_URL)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Analysis request timeout (default from ANALYSIS_TIMEOUT)")
	flags.StringVar(&opts.snapshotDir, "snapshot-dir", "", "Directory for the fact-check snapshot (default user cache dir)")
	flags.StringVarP(&opts.output, "output", "o", outputHuman, "Output format (human, json)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newFactCheckCmd(opts),
		newVersionCmd(version),
	)

	return rootCmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fakenews-cli version %s\n", version)
		},
	}
}

// complete fills unset options from the environment configuration.
func (o *rootOptions) complete(cmd *cobra.Command) error {
	if o.output != outputHuman && o.output != outputJSON {
		return fmt.Errorf("unsupported output format %q", o.output)
	}

	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if o.analysisURL == "" {
		o.analysisURL = cfg.AnalysisURL
	}

	if o.timeout <= 0 {
		o.timeout = cfg.AnalysisTimeout
	}

	if o.snapshotDir == "" {
		dir, err := snapshot.DefaultFileDir()
		if err != nil {
			return err
		}

		o.snapshotDir = dir
	}

	return nil
}

func (o *rootOptions) evidence() (*snapshot.Evidence, error) {
	store, err := snapshot.NewFileStore(o.snapshotDir)
	if err != nil {
		return nil, err
	}

	return snapshot.NewEvidence(store), nil
}

func (o *rootOptions) logger() *zerolog.Logger {
	level := zerolog.WarnLevel
	if o.verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &logger
}
