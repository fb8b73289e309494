package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
	"github.com/lueurxax/fakenews-web/internal/core/ports"
	"github.com/lueurxax/fakenews-web/internal/core/ports/mocks"
	"github.com/lueurxax/fakenews-web/internal/platform/config"
	"github.com/lueurxax/fakenews-web/internal/snapshot"
	"github.com/lueurxax/fakenews-web/internal/submission"
)

const validNewsText = "Scientists confirm that the moon is made entirely of cheese, according to a new report."

type testEnv struct {
	handler  http.Handler
	analyzer *mocks.Analyzer
	store    *mocks.SlotStore
}

func newTestConfig() *config.Config {
	return &config.Config{
		MaxUploadBytes:      1 << 20,
		SubmitRatePerMinute: 600,
		SubmitRateBurst:     100,
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	analyzer := mocks.NewAnalyzer(testResult("Yes"))
	store := mocks.NewSlotStore()

	handler, err := NewHandler(
		cfg,
		submission.NewController(analyzer, &logger),
		snapshot.NewEvidence(store),
		NewSessionService("test-secret", time.Hour),
		&logger,
	)
	require.NoError(t, err)

	return &testEnv{handler: handler.Routes(), analyzer: analyzer, store: store}
}

func testResult(label string) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		FakeNews:                 domain.FakeNews{Verdict: domain.ParseVerdict(label), Label: label},
		FakeNewsConfidence:       0.8234,
		Reasoning:                "The claim contradicts <em>every</em> source.",
		ImageTextMatch:           "No",
		ImageTextMatchConfidence: 0.25,
		ImageAnalysis:            domain.ImageAnalysis{Description: "A photo of the moon"},
		FactCheck:                "False",
		FactCheckConfidence:      0.9,
		FactCheckResults: []domain.EvidenceItem{
			{URL: "https://news.example/moon", Title: "Moon facts", Content: "The moon is rock.", Score: 0.95},
			{URL: "https://science.example/cheese", Title: "Cheese myths", Content: "Not cheese.", Score: 0.5},
		},
	}
}

func newAnalyzeRequest(t *testing.T, text string, withImage bool) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField(FieldNewsText, text))

	if withImage {
		part, err := mw.CreateFormFile(FieldImage, "moon.png")
		require.NoError(t, err)

		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, PathAnalyze, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Index(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	rec := serve(env.handler, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))

	body := rec.Body.String()
	for _, id := range []string{`id="fakeNewsForm"`, `id="news_text"`, `id="image"`, `id="file-name"`, `id="nav-menu"`, `id="loading"`, `id="result"`, `id="toast"`, `id="factCheckModal"`} {
		assert.Contains(t, body, id)
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	rec := serve(env.handler, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Analyze_Validation(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		withImage bool
		wantToast string
	}{
		{
			name:      "short text",
			text:      "too short",
			withImage: true,
			wantToast: submission.MsgNewsTextTooShort,
		},
		{
			name:      "whitespace padded text is trimmed",
			text:      "   " + strings.Repeat("a", 49) + "   ",
			withImage: true,
			wantToast: submission.MsgNewsTextTooShort,
		},
		{
			name:      "missing image",
			text:      validNewsText,
			withImage: false,
			wantToast: submission.MsgImageMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, newTestConfig())

			rec := serve(env.handler, newAnalyzeRequest(t, tt.text, tt.withImage))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantToast)
			assert.Empty(t, env.analyzer.Calls(), "no request may be sent on validation failure")
		})
	}
}

func TestHandler_Analyze_PreservesText(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	rec := serve(env.handler, newAnalyzeRequest(t, validNewsText, false))

	assert.Contains(t, rec.Body.String(), validNewsText)
}

func TestHandler_Analyze_Success(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	rec := serve(env.handler, newAnalyzeRequest(t, validNewsText, true))

	require.Equal(t, http.StatusOK, rec.Code)

	calls := env.analyzer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, validNewsText, calls[0].Request.NewsText)
	assert.Equal(t, "moon.png", calls[0].Request.Image.Name)
	assert.Equal(t, []byte("png-bytes"), calls[0].ImageData)

	body := rec.Body.String()
	assert.Contains(t, body, `class="result result-error"`)
	assert.Contains(t, body, `data-scroll="smooth"`)
	assert.Contains(t, body, "Analysis Results")
	assert.Contains(t, body, "Confidence: 82.3%")
	assert.Contains(t, body, `class="status-badge yes"`)
	assert.Contains(t, body, "Status: Yes")
	assert.Contains(t, body, "<em>every</em>")
	assert.Contains(t, body, "width: 25%;")
	assert.Contains(t, body, "width: 90%;")
	assert.Contains(t, body, `name="fact_check_results"`)
	assert.Contains(t, body, "View Fact-Check Details")
	assert.Contains(t, body, `style="display: none;"`, "loading indicator is hidden on every response")
	assert.NotContains(t, body, "toast-error")
}

func TestHandler_Analyze_SeverityClasses(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Yes", "result-error"},
		{"No", "result-success"},
		{"Inconclusive", "result-warning"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			env := newTestEnv(t, newTestConfig())
			env.analyzer.Result = testResult(tt.label)

			rec := serve(env.handler, newAnalyzeRequest(t, validNewsText, true))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `class="result `+tt.want+`"`)
		})
	}
}

func TestHandler_Analyze_BackendFailure(t *testing.T) {
	env := newTestEnv(t, newTestConfig())
	env.analyzer.AnalyzeFn = func(context.Context, ports.AnalysisRequest) (*domain.AnalysisResult, error) {
		return nil, errors.New("analysis status: 500 Internal Server Error")
	}

	rec := serve(env.handler, newAnalyzeRequest(t, validNewsText, true))

	require.Equal(t, http.StatusBadGateway, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, `id="toast"`))
	assert.Contains(t, body, submission.MsgAnalysisFailed)
	assert.NotContains(t, body, "500 Internal Server Error")
	assert.Contains(t, body, `<section id="result" class="result" style="display: none;"></section>`)
	assert.Contains(t, body, `id="loading" class="loading" style="display: none;"`)
	assert.NotContains(t, body, "Analysis Results")
}

func TestHandler_Analyze_NotMultipart(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	req := httptest.NewRequest(http.MethodPost, PathAnalyze, strings.NewReader("news_text=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(env.handler, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), submission.MsgAnalysisFailed)
	assert.Empty(t, env.analyzer.Calls())
}

func TestHandler_Analyze_TooLarge(t *testing.T) {
	cfg := newTestConfig()
	cfg.MaxUploadBytes = 64

	env := newTestEnv(t, cfg)

	rec := serve(env.handler, newAnalyzeRequest(t, validNewsText+validNewsText, true))

	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), submission.MsgAnalysisFailed)
	assert.Empty(t, env.analyzer.Calls())
}

func TestHandler_Analyze_RateLimited(t *testing.T) {
	cfg := newTestConfig()
	cfg.SubmitRatePerMinute = 1
	cfg.SubmitRateBurst = 1

	env := newTestEnv(t, cfg)

	first := serve(env.handler, newAnalyzeRequest(t, validNewsText, true))
	second := serve(env.handler, newAnalyzeRequest(t, validNewsText, true))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Len(t, env.analyzer.Calls(), 1)
}

func postFactCheck(t *testing.T, h http.Handler, payload string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{FieldFactCheckResults: {payload}}
	req := httptest.NewRequest(http.MethodPost, PathFactCheck, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return serve(h, req)
}

func getFactCheck(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	return serve(h, req)
}

func TestHandler_FactCheck_RoundTrip(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	saved := postFactCheck(t, env.handler, `[
		{"url":"https://news.example/moon","title":"Moon facts","content":"The moon is rock.","score":0.95},
		{"url":"https://science.example/cheese","title":"Cheese myths","content":"Not cheese.","score":0.5}
	]`)

	require.Equal(t, http.StatusSeeOther, saved.Code)
	assert.Equal(t, PathFactCheck, saved.Header().Get("Location"))

	cookies := saved.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 1, env.store.Len())

	for _, path := range []string{PathFactCheck, PathFactCheckHTML} {
		rec := getFactCheck(env.handler, path, cookies...)

		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		first := strings.Index(body, "Moon facts")
		second := strings.Index(body, "Cheese myths")

		require.NotEqual(t, -1, first)
		require.NotEqual(t, -1, second)
		assert.Less(t, first, second, "evidence keeps its order")
		assert.Contains(t, body, `href="https://news.example/moon" target="_blank" rel="noopener noreferrer"`)
		assert.Contains(t, body, `class="source-content"`)
		assert.Contains(t, body, "Relevance: 95.0%")
		assert.Contains(t, body, "Relevance: 50.0%")
		assert.NotContains(t, body, "No fact-check data available.")
	}
}

func TestHandler_FactCheck_OverwritesSnapshot(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	first := postFactCheck(t, env.handler, `[{"url":"https://a.example","title":"Old source","content":"","score":0.1}]`)
	cookies := first.Result().Cookies()

	second := postFactCheck(t, env.handler, `[{"url":"https://b.example","title":"New source","content":"","score":0.2}]`, cookies...)
	assert.Empty(t, second.Result().Cookies(), "existing session is reused")

	body := getFactCheck(env.handler, PathFactCheck, cookies...).Body.String()
	assert.Contains(t, body, "New source")
	assert.NotContains(t, body, "Old source")
	assert.Equal(t, 1, env.store.Len())
}

func TestHandler_FactCheck_Placeholder(t *testing.T) {
	env := newTestEnv(t, newTestConfig())
	sessions := NewSessionService("other-secret", time.Hour)
	_, foreign := sessions.Issue()

	tests := []struct {
		name    string
		cookies []*http.Cookie
	}{
		{name: "no session"},
		{name: "tampered session", cookies: []*http.Cookie{{Name: sessionCookie, Value: "garbage"}}},
		{name: "session signed elsewhere", cookies: []*http.Cookie{{Name: sessionCookie, Value: foreign}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := getFactCheck(env.handler, PathFactCheck, tt.cookies...)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "<p>No fact-check data available.</p>")
		})
	}
}

func TestHandler_FactCheck_StoreFailureShowsPlaceholder(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	saved := postFactCheck(t, env.handler, `[]`)
	cookies := saved.Result().Cookies()

	env.store.LoadFn = func(context.Context, string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}

	rec := getFactCheck(env.handler, PathFactCheck, cookies...)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No fact-check data available.")
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHandler_FactCheck_CorruptSnapshotShowsPlaceholder(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	saved := postFactCheck(t, env.handler, `[]`)
	cookies := saved.Result().Cookies()

	env.store.LoadFn = func(context.Context, string) ([]byte, error) {
		return []byte("{not json"), nil
	}

	rec := getFactCheck(env.handler, PathFactCheck, cookies...)

	assert.Contains(t, rec.Body.String(), "No fact-check data available.")
}

func TestHandler_FactCheck_SaveFailureStillRedirects(t *testing.T) {
	env := newTestEnv(t, newTestConfig())
	env.store.SaveFn = func(context.Context, string, []byte) error {
		return apperrors.ErrSnapshotCorrupt
	}

	rec := postFactCheck(t, env.handler, `[]`)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestHandler_FactCheck_RejectsMalformedPayload(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	rec := postFactCheck(t, env.handler, "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, env.store.Len())
}

func TestHandler_Static(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	js := serve(env.handler, httptest.NewRequest(http.MethodGet, "/static/js/page.js", nil))
	require.Equal(t, http.StatusOK, js.Code)
	assert.Contains(t, js.Body.String(), "clearTimeout")
	assert.Contains(t, js.Body.String(), "Selected file: ")

	css := serve(env.handler, httptest.NewRequest(http.MethodGet, "/static/css/style.css", nil))
	require.Equal(t, http.StatusOK, css.Code)
	assert.Contains(t, css.Body.String(), ".result-warning")
}

func TestHandler_ClientIP(t *testing.T) {
	tests := []struct {
		name    string
		proxies []string
		headers map[string]string
		remote  string
		want    string
	}{
		{"port dropped", nil, nil, "198.51.100.4:51000", "198.51.100.4"},
		{"ipv6 port dropped", nil, nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"forwarded for ignored without proxy", nil, map[string]string{"X-Forwarded-For": "10.0.0.1"}, "198.51.100.4:1", "198.51.100.4"},
		{"real ip ignored without proxy", nil, map[string]string{"X-Real-IP": "10.0.0.3"}, "198.51.100.4:1", "198.51.100.4"},
		{"forwarded for from untrusted peer", []string{"192.0.2.10"}, map[string]string{"X-Forwarded-For": "10.0.0.1"}, "198.51.100.4:1", "198.51.100.4"},
		{"forwarded for from trusted proxy", []string{"192.0.2.10"}, map[string]string{"X-Forwarded-For": "203.0.113.9"}, "192.0.2.10:1", "203.0.113.9"},
		{"spoofed leftmost hop skipped", []string{"192.0.2.0/24"}, map[string]string{"X-Forwarded-For": "10.9.9.9, 203.0.113.9, 192.0.2.11"}, "192.0.2.10:1", "203.0.113.9"},
		{"real ip from trusted proxy", []string{"192.0.2.0/24"}, map[string]string{"X-Real-IP": "203.0.113.5"}, "192.0.2.10:1", "203.0.113.5"},
		{"garbage header falls back to peer", []string{"192.0.2.10"}, map[string]string{"X-Real-IP": "not-an-ip"}, "192.0.2.10:1", "192.0.2.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			cfg.TrustedProxies = tt.proxies
			h := newTestHandler(t, cfg)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote

			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := h.clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newTestHandler(t *testing.T, cfg *config.Config) *Handler {
	t.Helper()

	logger := zerolog.Nop()

	h, err := NewHandler(
		cfg,
		submission.NewController(mocks.NewAnalyzer(testResult("Yes")), &logger),
		snapshot.NewEvidence(mocks.NewSlotStore()),
		NewSessionService("test-secret", time.Hour),
		&logger,
	)
	require.NoError(t, err)

	return h
}

func TestNewHandler_InvalidTrustedProxy(t *testing.T) {
	cfg := newTestConfig()
	cfg.TrustedProxies = []string{"10.0.0.0/99"}

	logger := zerolog.Nop()

	_, err := NewHandler(cfg, submission.NewController(mocks.NewAnalyzer(nil), &logger),
		snapshot.NewEvidence(mocks.NewSlotStore()), NewSessionService("s", time.Hour), &logger)
	require.Error(t, err)
}

func TestHandler_Analyze_RateLimitedAcrossPorts(t *testing.T) {
	cfg := newTestConfig()
	cfg.SubmitRatePerMinute = 1
	cfg.SubmitRateBurst = 1

	env := newTestEnv(t, cfg)

	allowed := 0

	for port := 40000; port < 40010; port++ {
		req := newAnalyzeRequest(t, validNewsText, true)
		req.RemoteAddr = fmt.Sprintf("203.0.113.7:%d", port)

		rec := serve(env.handler, req)
		if rec.Code == http.StatusOK {
			allowed++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}

	assert.Equal(t, 1, allowed)
	assert.Len(t, env.analyzer.Calls(), 1)
}

func TestHandler_Analyze_SpoofedForwardedForStillLimited(t *testing.T) {
	cfg := newTestConfig()
	cfg.SubmitRatePerMinute = 1
	cfg.SubmitRateBurst = 1

	env := newTestEnv(t, cfg)

	for i := range 3 {
		req := newAnalyzeRequest(t, validNewsText, true)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i+1))
		serve(env.handler, req)
	}

	assert.Len(t, env.analyzer.Calls(), 1)
}

func TestHandler_Throttle(t *testing.T) {
	cfg := newTestConfig()
	cfg.SubmitRatePerMinute = 1
	cfg.SubmitRateBurst = 1

	h := newTestHandler(t, cfg)
	req := httptest.NewRequest(http.MethodPost, PathAnalyze, nil)

	require.NoError(t, h.throttle(req))

	err := h.throttle(req)
	require.ErrorIs(t, err, apperrors.ErrRateLimited)
	assert.Contains(t, err.Error(), "192.0.2.1")
}

func TestHandler_IdleLimitersEvicted(t *testing.T) {
	h := newTestHandler(t, newTestConfig())

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	for i := range 50 {
		h.allowRequest(fmt.Sprintf("198.51.100.%d", i))
	}

	assert.Len(t, h.limiters, 50)

	now = now.Add(limiterIdleTTL / 2)
	h.allowRequest("203.0.113.1")

	now = now.Add(limiterIdleTTL/2 + limiterSweepInterval)
	h.allowRequest("203.0.113.2")

	assert.Len(t, h.limiters, 2)
	assert.Contains(t, h.limiters, "203.0.113.1")
	assert.Contains(t, h.limiters, "203.0.113.2")
}
