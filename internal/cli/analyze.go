package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/lueurxax/fakenews-web/internal/analysis"
	"github.com/lueurxax/fakenews-web/internal/submission"
	"github.com/lueurxax/fakenews-web/internal/ui"
)

// cliRPS paces the single request a CLI invocation makes.
const cliRPS = 1

type analyzeOptions struct {
	text      string
	textFile  string
	imagePath string
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a news text and its image",
		Long: `Send a news text and the image that came with it to the analysis service.

Examples:
  # Analyze text given inline
  fakenews-cli analyze --text "..." --image photo.jpg

  # Analyze text read from a file
  fakenews-cli analyze --text-file story.txt --image photo.jpg -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "News text")
	cmd.Flags().StringVar(&opts.textFile, "text-file", "", "Read news text from file")
	cmd.Flags().StringVar(&opts.imagePath, "image", "", "Image related to the news")
	cmd.MarkFlagsMutuallyExclusive("text", "text-file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions) error {
	text := opts.text

	if opts.textFile != "" {
		data, err := os.ReadFile(opts.textFile)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}

		text = string(data)
	}

	sub := submission.Submission{NewsText: text}

	if opts.imagePath != "" {
		f, err := os.Open(opts.imagePath)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat image: %w", err)
		}

		sub.Image = &submission.Image{
			Name:        filepath.Base(opts.imagePath),
			ContentType: mime.TypeByExtension(filepath.Ext(opts.imagePath)),
			Size:        info.Size(),
			Body:        f,
		}
	}

	if err := submission.Validate(sub); err != nil {
		return errors.New(submission.Notification(err))
	}

	evidence, err := root.evidence()
	if err != nil {
		return err
	}

	controller := submission.NewController(analysis.NewClient(root.analysisURL, root.timeout, cliRPS), root.logger())

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Analyzing news..."
	s.Start()

	result, err := controller.Submit(cmd.Context(), sub)

	s.Stop()

	if err != nil {
		return errors.New(submission.Notification(err))
	}

	if err := evidence.Save(cmd.Context(), cliSessionID, result.FactCheckResults); err != nil {
		root.logger().Warn().Err(err).Msg("failed to save fact-check snapshot")
	}

	out := cmd.OutOrStdout()

	if root.output == outputJSON {
		return writeJSON(out, result)
	}

	view, err := ui.NewResultView(result)
	if err != nil {
		return err
	}

	printResult(out, view)

	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	return nil
}
