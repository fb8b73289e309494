package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
	"github.com/lueurxax/fakenews-web/internal/core/ports"
)

// AnalyzerCall records one Analyze invocation. The image body is read eagerly.
type AnalyzerCall struct {
	Request   ports.AnalysisRequest
	ImageData []byte
}

// Analyzer is a recording implementation of ports.Analyzer.
type Analyzer struct {
	mu    sync.Mutex
	calls []AnalyzerCall

	// Result is returned when AnalyzeFn is nil.
	Result *domain.AnalysisResult

	// AnalyzeFn allows overriding Analyze behavior.
	AnalyzeFn func(ctx context.Context, req ports.AnalysisRequest) (*domain.AnalysisResult, error)
}

// NewAnalyzer creates an analyzer mock returning result.
func NewAnalyzer(result *domain.AnalysisResult) *Analyzer {
	return &Analyzer{Result: result}
}

// Analyze records the call and returns the configured result.
func (a *Analyzer) Analyze(ctx context.Context, req ports.AnalysisRequest) (*domain.AnalysisResult, error) {
	var data []byte

	if req.Image.Body != nil {
		data, _ = io.ReadAll(req.Image.Body) //nolint:errcheck // test double
	}

	a.mu.Lock()
	a.calls = append(a.calls, AnalyzerCall{Request: req, ImageData: data})
	a.mu.Unlock()

	if a.AnalyzeFn != nil {
		return a.AnalyzeFn(ctx, req)
	}

	return a.Result, nil
}

// Calls returns a copy of the recorded calls.
func (a *Analyzer) Calls() []AnalyzerCall {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]AnalyzerCall, len(a.calls))
	copy(out, a.calls)

	return out
}
