// Package analysis talks to the fake-news analysis backend.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
	"github.com/lueurxax/fakenews-web/internal/core/ports"
)

// Form field names expected by the backend.
const (
	FieldNewsText = "news_text"
	FieldImage    = "image"
)

const (
	defaultHTTPTimeout = 90 * time.Second
	defaultRPS         = 2
	maxResponseBytes   = 4 << 20
	maxErrorBodyBytes  = 512
	headerRequestID    = "X-Request-ID"
	headerContentType  = "Content-Type"
	defaultImageType   = "application/octet-stream"
	defaultImageName   = "upload"
)

// Client posts submissions to the analysis endpoint.
type Client struct {
	endpoint string
	limiter  *rate.Limiter
	client   *http.Client
}

var _ ports.Analyzer = (*Client)(nil)

// NewClient creates a client for endpoint. Non-positive values fall back to defaults.
func NewClient(endpoint string, timeout time.Duration, rps float64) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	if rps <= 0 {
		rps = defaultRPS
	}

	return &Client{
		endpoint: endpoint,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Analyze sends news_text and image as multipart/form-data and decodes the JSON result.
// Any non-2xx status is reported as ErrAnalysisStatus.
func (c *Client) Analyze(ctx context.Context, req ports.AnalysisRequest) (*domain.AnalysisResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("analysis rate limit: %w", err)
	}

	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentType)
	httpReq.Header.Set("Accept", "application/json")

	if req.RequestID != "" {
		httpReq.Header.Set(headerRequestID, req.RequestID)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes)) //nolint:errcheck // best-effort detail for logs

		return nil, fmt.Errorf("%w: %d %s", apperrors.ErrAnalysisStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return decodeResult(io.LimitReader(resp.Body, maxResponseBytes))
}

func decodeResult(r io.Reader) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.ErrEmptyResponse
		}

		return nil, fmt.Errorf("decode analysis response: %w", err)
	}

	return &result, nil
}

func encodeForm(req ports.AnalysisRequest) (io.Reader, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	if err := w.WriteField(FieldNewsText, req.NewsText); err != nil {
		return nil, "", fmt.Errorf("write news_text field: %w", err)
	}

	part, err := w.CreatePart(imageHeader(req.Image))
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}

	if req.Image.Body != nil {
		if _, err := io.Copy(part, req.Image.Body); err != nil {
			return nil, "", fmt.Errorf("copy image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func imageHeader(img ports.Image) textproto.MIMEHeader {
	name := img.Name
	if name == "" {
		name = defaultImageName
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = defaultImageType
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldImage, quoteEscaper.Replace(name)))
	h.Set(headerContentType, contentType)

	return h
}
