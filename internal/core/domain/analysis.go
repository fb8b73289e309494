// Package domain defines the analysis result model returned by the fake-news
// backend and the presentation rules shared by every renderer.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Verdict is the overall fake-news assessment.
type Verdict int

// Verdict values. VerdictUnknown covers any label the backend may add later.
const (
	VerdictUnknown Verdict = iota
	VerdictYes
	VerdictNo
	VerdictInconclusive
)

// Severity is the visual styling category derived from a Verdict.
type Severity string

// Severity values.
const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

var verdictFolder = cases.Fold()

var verdictLabels = map[string]Verdict{
	verdictFolder.String("Yes"):          VerdictYes,
	verdictFolder.String("No"):           VerdictNo,
	verdictFolder.String("Inconclusive"): VerdictInconclusive,
}

// ParseVerdict maps a backend label to a Verdict, case-insensitively.
func ParseVerdict(label string) Verdict {
	if v, ok := verdictLabels[verdictFolder.String(strings.TrimSpace(label))]; ok {
		return v
	}

	return VerdictUnknown
}

// Severity returns the styling category for the verdict.
func (v Verdict) Severity() Severity {
	switch v {
	case VerdictYes:
		return SeverityError
	case VerdictNo:
		return SeveritySuccess
	case VerdictInconclusive:
		return SeverityWarning
	default:
		return SeverityWarning
	}
}

// String returns the canonical label.
func (v Verdict) String() string {
	switch v {
	case VerdictYes:
		return "Yes"
	case VerdictNo:
		return "No"
	case VerdictInconclusive:
		return "Inconclusive"
	default:
		return "Unknown"
	}
}

// FakeNews holds the decoded verdict and the label exactly as the backend sent it.
type FakeNews struct {
	Verdict Verdict
	Label   string
}

// UnmarshalJSON decodes the backend's string label.
func (f *FakeNews) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("decode fake_news: %w", err)
	}

	f.Label = label
	f.Verdict = ParseVerdict(label)

	return nil
}

// MarshalJSON encodes the original label.
func (f FakeNews) MarshalJSON() ([]byte, error) {
	label := f.Label
	if label == "" {
		label = f.Verdict.String()
	}

	return json.Marshal(label)
}

// Slug is the lower-case label used as the status badge class.
func (f FakeNews) Slug() string {
	label := f.Label
	if label == "" {
		label = f.Verdict.String()
	}

	return strings.ToLower(strings.Join(strings.Fields(label), "-"))
}

// ImageAnalysis describes what the backend saw in the uploaded image.
type ImageAnalysis struct {
	Description string `json:"description"`
}

// EvidenceItem is one retrieved fact-check source.
type EvidenceItem struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// AnalysisResult is the backend's assessment of one submission.
type AnalysisResult struct {
	FakeNews                 FakeNews       `json:"fake_news"`
	FakeNewsConfidence       float64        `json:"fake_news_confidence"`
	Reasoning                string         `json:"reasoning"`
	ImageTextMatch           string         `json:"image_text_match"`
	ImageTextMatchConfidence float64        `json:"image_text_match_confidence"`
	ImageAnalysis            ImageAnalysis  `json:"image_analysis"`
	FactCheck                string         `json:"fact_check"`
	FactCheckConfidence      float64        `json:"fact_check_confidence"`
	FactCheckResults         []EvidenceItem `json:"fact_check_results"`
}

// Severity returns the styling category of the result.
func (r *AnalysisResult) Severity() Severity {
	return r.FakeNews.Verdict.Severity()
}
