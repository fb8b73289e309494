// Package submission validates news submissions and forwards them to the
// analysis backend.
package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
	"github.com/lueurxax/fakenews-web/internal/core/ports"
	"github.com/lueurxax/fakenews-web/internal/platform/htmlutils"
)

// MinNewsTextLength is the minimum trimmed news text length in UTF-16 code units.
const MinNewsTextLength = 50

// User-facing notification texts.
const (
	MsgNewsTextTooShort = "Please enter at least 50 characters of news text."
	MsgImageMissing     = "Please upload an image related to the news."
	MsgAnalysisFailed   = "An error occurred while analyzing the news. Please try again."
)

// Log field constants.
const (
	logFieldRequestID = "request_id"
	logFieldVerdict   = "verdict"
)

// Submission is one user request. Image is nil when no file was selected.
type Submission struct {
	NewsText string
	Image    *Image
}

// Image is a selected image file.
type Image struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Controller validates submissions and calls the analyzer.
type Controller struct {
	analyzer ports.Analyzer
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewController creates a submission controller.
func NewController(analyzer ports.Analyzer, logger *zerolog.Logger) *Controller {
	return &Controller{
		analyzer: analyzer,
		logger:   logger,
		now:      time.Now,
	}
}

// Validate checks the trimmed news text length and image presence.
func Validate(sub Submission) error {
	if htmlutils.UTF16Len(htmlutils.TrimBrowserSpace(sub.NewsText)) < MinNewsTextLength {
		return apperrors.ErrNewsTextTooShort
	}

	if sub.Image == nil || sub.Image.Body == nil || (sub.Image.Name == "" && sub.Image.Size == 0) {
		return apperrors.ErrImageMissing
	}

	return nil
}

// Submit validates sub and, when valid, sends it to the analyzer. Validation
// errors are returned as is; every analyzer failure is wrapped in ErrAnalysisFailed.
func (c *Controller) Submit(ctx context.Context, sub Submission) (*domain.AnalysisResult, error) {
	if err := Validate(sub); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	started := c.now()

	result, err := c.analyzer.Analyze(ctx, ports.AnalysisRequest{
		RequestID: requestID,
		NewsText:  htmlutils.TrimBrowserSpace(sub.NewsText),
		Image: ports.Image{
			Name:        sub.Image.Name,
			ContentType: sub.Image.ContentType,
			Body:        sub.Image.Body,
		},
	})

	elapsed := c.now().Sub(started)
	AnalysisLatency.Observe(elapsed.Seconds())

	if err != nil {
		c.logger.Error().Err(err).Str(logFieldRequestID, requestID).Dur("elapsed", elapsed).Msg("analysis request failed")

		return nil, fmt.Errorf("%w: %w", apperrors.ErrAnalysisFailed, err)
	}

	if result == nil {
		c.logger.Error().Str(logFieldRequestID, requestID).Msg("analysis returned no result")

		return nil, fmt.Errorf("%w: %w", apperrors.ErrAnalysisFailed, apperrors.ErrEmptyResponse)
	}

	c.logger.Info().
		Str(logFieldRequestID, requestID).
		Str(logFieldVerdict, result.FakeNews.Verdict.String()).
		Int("evidence", len(result.FactCheckResults)).
		Dur("elapsed", elapsed).
		Msg("analysis completed")

	return result, nil
}

// Notification returns the fixed human-readable message for a submission error.
func Notification(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNewsTextTooShort):
		return MsgNewsTextTooShort
	case errors.Is(err, apperrors.ErrImageMissing):
		return MsgImageMissing
	default:
		return MsgAnalysisFailed
	}
}

// IsValidationError reports whether err came from input validation.
func IsValidationError(err error) bool {
	return errors.Is(err, apperrors.ErrNewsTextTooShort) || errors.Is(err, apperrors.ErrImageMissing)
}
