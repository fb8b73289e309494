// Package ui builds the view models shared by the web pages and the terminal
// client: formatted percentages, bar widths, severity classes and sanitized
// free text derived from an analysis result.
package ui

import (
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
	"github.com/lueurxax/fakenews-web/internal/platform/htmlutils"
)

// Placeholder is shown on the detail view when no evidence snapshot exists.
const Placeholder = "No fact-check data available."

// ResultView is a rendered analysis result.
type ResultView struct {
	Severity      domain.Severity
	SeverityClass string

	Confidence  string
	StatusLabel string
	BadgeClass  string

	Reasoning     template.HTML
	ReasoningText string

	ImageTextMatch           string
	ImageTextMatchConfidence string
	ImageTextMatchWidth      template.CSS

	ImageDescription     template.HTML
	ImageDescriptionText string

	FactCheck           string
	FactCheckConfidence string
	FactCheckWidth      template.CSS

	// EvidenceJSON is the serialized fact_check_results list posted back by
	// the "View Fact-Check Details" action.
	EvidenceJSON string
}

// EvidenceView is one fact-check source on the detail view.
type EvidenceView struct {
	URL         string
	Title       string
	Content     template.HTML
	ContentText string
	Relevance   string
}

// NewResultView converts an analysis result into its display form.
func NewResultView(r *domain.AnalysisResult) (*ResultView, error) {
	evidence := r.FactCheckResults
	if evidence == nil {
		evidence = []domain.EvidenceItem{}
	}

	payload, err := json.Marshal(evidence)
	if err != nil {
		return nil, fmt.Errorf("encode fact check results: %w", err)
	}

	severity := r.Severity()

	return &ResultView{
		Severity:      severity,
		SeverityClass: SeverityClass(severity),

		Confidence:  domain.FormatPercent(r.FakeNewsConfidence),
		StatusLabel: statusLabel(r.FakeNews),
		BadgeClass:  "status-badge " + r.FakeNews.Slug(),

		Reasoning:     htmlutils.SanitizeHTML(r.Reasoning),
		ReasoningText: htmlutils.PlainText(r.Reasoning),

		ImageTextMatch:           r.ImageTextMatch,
		ImageTextMatchConfidence: domain.FormatPercent(r.ImageTextMatchConfidence),
		ImageTextMatchWidth:      barWidth(r.ImageTextMatchConfidence),

		ImageDescription:     htmlutils.SanitizeHTML(r.ImageAnalysis.Description),
		ImageDescriptionText: htmlutils.PlainText(r.ImageAnalysis.Description),

		FactCheck:           r.FactCheck,
		FactCheckConfidence: domain.FormatPercent(r.FactCheckConfidence),
		FactCheckWidth:      barWidth(r.FactCheckConfidence),

		EvidenceJSON: string(payload),
	}, nil
}

// NewEvidenceViews converts evidence items, keeping their order.
func NewEvidenceViews(items []domain.EvidenceItem) []EvidenceView {
	views := make([]EvidenceView, 0, len(items))

	for _, item := range items {
		views = append(views, EvidenceView{
			URL:         item.URL,
			Title:       item.Title,
			Content:     htmlutils.SanitizeHTML(item.Content),
			ContentText: htmlutils.PlainText(item.Content),
			Relevance:   domain.FormatPercent(item.Score),
		})
	}

	return views
}

// SeverityClass returns the CSS class of the result container.
func SeverityClass(s domain.Severity) string {
	return "result-" + string(s)
}

func statusLabel(f domain.FakeNews) string {
	if f.Label != "" {
		return f.Label
	}

	return f.Verdict.String()
}

func barWidth(f float64) template.CSS {
	//nolint:gosec // BarWidth only emits a clamped number followed by %
	return template.CSS(domain.BarWidth(f))
}
