// Package ports provides domain-centric interfaces for external dependencies.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern,
// allowing the page controllers to remain independent of infrastructure concerns.
package ports

import (
	"context"
	"io"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
)

// Image is an uploaded image file.
type Image struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// AnalysisRequest is one submission forwarded to the analysis backend.
type AnalysisRequest struct {
	RequestID string
	NewsText  string
	Image     Image
}

// Analyzer sends a submission to the fake-news analysis backend.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*domain.AnalysisResult, error)
}

// SlotStore holds named byte slots. Save overwrites; Load returns
// errors.ErrSnapshotNotFound for a slot that was never written.
type SlotStore interface {
	Save(ctx context.Context, key string, payload []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
}
