package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
	"github.com/lueurxax/fakenews-web/internal/ui"
)

func printResult(w io.Writer, view *ui.ResultView) {
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)
	status := severityColor(view.Severity)

	fmt.Fprintln(w)
	cyan.Fprintln(w, "Analysis Results")
	fmt.Fprintf(w, "   Confidence: %s\n", view.Confidence)
	status.Fprintf(w, "   Status: %s\n", view.StatusLabel)

	if view.ReasoningText != "" {
		fmt.Fprintf(w, "   %s\n", view.ReasoningText)
	}

	fmt.Fprintln(w)
	white.Fprintln(w, "Image-Text Analysis")
	fmt.Fprintf(w, "   Match: %s\n", view.ImageTextMatch)
	fmt.Fprintf(w, "   Confidence: %s\n", view.ImageTextMatchConfidence)

	fmt.Fprintln(w)
	white.Fprintln(w, "Image Analysis")
	fmt.Fprintf(w, "   %s\n", view.ImageDescriptionText)

	fmt.Fprintln(w)
	white.Fprintln(w, "Fact Check Results Summary")
	fmt.Fprintf(w, "   Status: %s\n", view.FactCheck)
	fmt.Fprintf(w, "   Confidence: %s\n", view.FactCheckConfidence)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'fakenews-cli factcheck' to view fact-check details.")
}

func printEvidence(w io.Writer, page *ui.DetailPage) {
	if !page.Available {
		fmt.Fprintln(w, page.Placeholder())

		return
	}

	cyan := color.New(color.FgCyan, color.Bold)

	cyan.Fprintln(w, "Fact-Check Details")

	for i, item := range page.Evidence {
		fmt.Fprintf(w, "%d. %s\n", i+1, item.Title)
		fmt.Fprintf(w, "   %s\n", color.BlueString(item.URL))

		if item.ContentText != "" {
			fmt.Fprintf(w, "   %s\n", item.ContentText)
		}

		fmt.Fprintf(w, "   Relevance: %s\n", item.Relevance)
	}
}

func severityColor(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityError:
		return color.New(color.FgRed, color.Bold)
	case domain.SeveritySuccess:
		return color.New(color.FgGreen, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}
