// Package web serves the fake news detector pages: the submission form with
// its inline analysis result and the fact-check detail view.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
	"github.com/lueurxax/fakenews-web/internal/platform/config"
	"github.com/lueurxax/fakenews-web/internal/snapshot"
	"github.com/lueurxax/fakenews-web/internal/submission"
	"github.com/lueurxax/fakenews-web/internal/ui"
)

// Form field names.
const (
	FieldNewsText         = "news_text"
	FieldImage            = "image"
	FieldFactCheckResults = "fact_check_results"
)

// Route paths.
const (
	PathIndex         = "/"
	PathAnalyze       = "/analyze"
	PathFactCheck     = "/factcheck"
	PathFactCheckHTML = "/factcheck.html"
	PathStatic        = "/static/"
)

const (
	multipartMemory   = 8 << 20
	defaultUploadCap  = 5 << 20
	defaultRatePerMin = 20
	defaultRateBurst  = 5

	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

// Log field constants.
const (
	logFieldSession = "session"
	logFieldStatus  = "status"
)

// HTTP header constants.
const headerContentType = "Content-Type"

// Handler serves the web pages.
type Handler struct {
	controller *submission.Controller
	evidence   *snapshot.Evidence
	sessions   *SessionService
	renderer   *Renderer
	logger     *zerolog.Logger

	maxUploadBytes int64
	cookieSecure   bool
	rateEvery      time.Duration
	rateBurst      int

	// IP-based rate limiting
	trustedProxies []netip.Prefix
	limiters       map[string]*clientLimiter
	limitersMu     sync.Mutex
	lastSweep      time.Time
	now            func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewHandler creates a new web handler.
func NewHandler(cfg *config.Config, controller *submission.Controller, evidence *snapshot.Evidence, sessions *SessionService, logger *zerolog.Logger) (*Handler, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	proxies, err := parseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		controller:     controller,
		evidence:       evidence,
		sessions:       sessions,
		renderer:       renderer,
		logger:         logger,
		maxUploadBytes: cfg.MaxUploadBytes,
		cookieSecure:   cfg.CookieSecure,
		rateBurst:      cfg.SubmitRateBurst,
		trustedProxies: proxies,
		limiters:       make(map[string]*clientLimiter),
		now:            time.Now,
	}

	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = defaultUploadCap
	}

	perMinute := cfg.SubmitRatePerMinute
	if perMinute <= 0 {
		perMinute = defaultRatePerMin
	}

	h.rateEvery = time.Minute / time.Duration(perMinute)

	if h.rateBurst <= 0 {
		h.rateBurst = defaultRateBurst
	}

	return h, nil
}

// Routes returns the handler's route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+PathIndex+"{$}", h.timed("index", h.handleIndex))
	mux.HandleFunc("POST "+PathAnalyze, h.timed("analyze", h.limited(h.handleAnalyze)))
	mux.HandleFunc("POST "+PathFactCheck, h.timed("factcheck_save", h.limited(h.handleSaveFactCheck)))
	mux.HandleFunc("GET "+PathFactCheck, h.timed("factcheck", h.handleFactCheck))
	mux.HandleFunc("GET "+PathFactCheckHTML, h.timed("factcheck", h.handleFactCheck))
	mux.Handle("GET "+PathStatic, http.StripPrefix(PathStatic, http.FileServerFS(StaticFS())))

	return mux
}

func (h *Handler) timed(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		defer func() {
			LatencyHistogram.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}()

		setSecurityHeaders(w)
		next(w, r)
	}
}

func (h *Handler) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.throttle(r); err != nil {
			h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request throttled")
			DeniedTotal.WithLabelValues(ReasonRateLimited).Inc()
			h.renderError(w, http.StatusTooManyRequests, "Too Many Requests", "Please wait before trying again.")

			return
		}

		next(w, r)
	}
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy",
		"default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; script-src 'self'; frame-ancestors 'none'")
	w.Header().Set(headerContentType, "text/html; charset=utf-8")
}

func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	h.renderIndex(w, http.StatusOK, &ui.Page{})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.handleFormError(w, err)

		return
	}

	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	page := &ui.Page{NewsText: r.PostFormValue(FieldNewsText)}
	sub := submission.Submission{NewsText: page.NewsText}

	file, header, err := r.FormFile(FieldImage)
	if err == nil {
		defer file.Close()

		sub.Image = &submission.Image{
			Name:        header.Filename,
			ContentType: header.Header.Get(headerContentType),
			Size:        header.Size,
			Body:        file,
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.logger.Warn().Err(err).Msg("failed to read image part")
	}

	result, err := h.controller.Submit(r.Context(), sub)
	if err != nil {
		h.handleSubmitError(w, r, page, err)

		return
	}

	view, err := ui.NewResultView(result)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build result view")
		page.Notify(submission.MsgAnalysisFailed)
		SubmissionsTotal.WithLabelValues(OutcomeFailed).Inc()
		h.renderIndex(w, http.StatusInternalServerError, page)

		return
	}

	page.Result = view
	SubmissionsTotal.WithLabelValues(OutcomeOK).Inc()
	h.renderIndex(w, http.StatusOK, page)
}

func (h *Handler) handleFormError(w http.ResponseWriter, err error) {
	page := &ui.Page{}
	page.Notify(submission.MsgAnalysisFailed)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		SubmissionsTotal.WithLabelValues(OutcomeTooLarge).Inc()
		h.logger.Warn().Int64("limit", tooLarge.Limit).Msg("submission exceeds upload limit")
		h.renderIndex(w, http.StatusRequestEntityTooLarge, page)

		return
	}

	SubmissionsTotal.WithLabelValues(OutcomeBadRequest).Inc()
	h.logger.Warn().Err(err).Msg("malformed submission form")
	h.renderIndex(w, http.StatusBadRequest, page)
}

func (h *Handler) handleSubmitError(w http.ResponseWriter, r *http.Request, page *ui.Page, err error) {
	page.Notify(submission.Notification(err))

	switch {
	case submission.IsValidationError(err):
		SubmissionsTotal.WithLabelValues(OutcomeInvalid).Inc()
		h.renderIndex(w, http.StatusUnprocessableEntity, page)
	case errors.Is(r.Context().Err(), context.Canceled):
		// The browser navigated away; nobody is left to render for.
		SubmissionsTotal.WithLabelValues(OutcomeCanceled).Inc()
		h.logger.Debug().Msg("submission abandoned by client")
	default:
		SubmissionsTotal.WithLabelValues(OutcomeFailed).Inc()
		h.renderIndex(w, http.StatusBadGateway, page)
	}
}

func (h *Handler) handleSaveFactCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseForm(); err != nil {
		SnapshotWritesTotal.WithLabelValues(OutcomeBadRequest).Inc()
		h.renderError(w, http.StatusBadRequest, "Bad Request", "The fact-check data could not be read.")

		return
	}

	items, err := snapshot.Decode([]byte(r.PostFormValue(FieldFactCheckResults)))
	if err != nil && !errors.Is(err, apperrors.ErrSnapshotNotFound) {
		SnapshotWritesTotal.WithLabelValues(OutcomeBadRequest).Inc()
		h.renderError(w, http.StatusBadRequest, "Bad Request", "The fact-check data could not be read.")

		return
	}

	session := h.ensureSession(w, r)

	if err := h.evidence.Save(r.Context(), session.ID, items); err != nil {
		SnapshotWritesTotal.WithLabelValues(OutcomeFailed).Inc()
		ErrorsTotal.WithLabelValues(ErrorTypeStore).Inc()
		h.logger.Error().Err(err).Str(logFieldSession, session.ID).Msg("failed to save evidence snapshot")
	} else {
		SnapshotWritesTotal.WithLabelValues(OutcomeOK).Inc()
	}

	http.Redirect(w, r, PathFactCheck, http.StatusSeeOther)
}

func (h *Handler) handleFactCheck(w http.ResponseWriter, r *http.Request) {
	page := &ui.DetailPage{}

	items, err := h.loadEvidence(r)
	if err == nil {
		page.Available = true
		page.Evidence = ui.NewEvidenceViews(items)

		DetailViewsTotal.WithLabelValues(OutcomeOK).Inc()
	} else {
		DetailViewsTotal.WithLabelValues(OutcomePlaceholder).Inc()
	}

	var buf bytes.Buffer

	if err := h.renderer.RenderFactCheck(&buf, page); err != nil {
		h.logger.Error().Err(err).Msg("failed to render fact-check page")
		ErrorsTotal.WithLabelValues(ErrorTypeRender).Inc()
		h.renderError(w, http.StatusInternalServerError, "Error", "Failed to render the page.")

		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) loadEvidence(r *http.Request) ([]domain.EvidenceItem, error) {
	session, err := h.sessions.FromRequest(r)
	if err != nil {
		return nil, err
	}

	items, err := h.evidence.Load(r.Context(), session.ID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			ErrorsTotal.WithLabelValues(ErrorTypeStore).Inc()
			h.logger.Warn().Err(err).Str(logFieldSession, session.ID).Msg("evidence snapshot unavailable")
		}

		return nil, err
	}

	return items, nil
}

// ensureSession returns the request's session, issuing a new cookie when the
// request carries none or an invalid one.
func (h *Handler) ensureSession(w http.ResponseWriter, r *http.Request) *Session {
	if session, err := h.sessions.FromRequest(r); err == nil {
		return session
	}

	session, token := h.sessions.Issue()
	setSessionCookie(w, token, session.ExpiresAt, h.cookieSecure)

	return session
}

func (h *Handler) renderIndex(w http.ResponseWriter, code int, page *ui.Page) {
	var buf bytes.Buffer

	if err := h.renderer.RenderIndex(&buf, page); err != nil {
		h.logger.Error().Err(err).Msg("failed to render index page")
		ErrorsTotal.WithLabelValues(ErrorTypeRender).Inc()
		h.renderError(w, http.StatusInternalServerError, "Error", "Failed to render the page.")

		return
	}

	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderError(w http.ResponseWriter, code int, title, message string) {
	w.WriteHeader(code)

	if err := h.renderer.RenderError(w, &ErrorData{
		Code:    code,
		Title:   title,
		Message: message,
	}); err != nil {
		h.logger.Error().Err(err).Int(logFieldStatus, code).Msg("Failed to render error page")
	}
}

// throttle returns ErrRateLimited when the client has used up its budget.
func (h *Handler) throttle(r *http.Request) error {
	ip := h.clientIP(r)
	if !h.allowRequest(ip) {
		return fmt.Errorf("%w: %s", apperrors.ErrRateLimited, ip)
	}

	return nil
}

func (h *Handler) allowRequest(ip string) bool {
	now := h.now()

	h.limitersMu.Lock()

	if now.Sub(h.lastSweep) >= limiterSweepInterval {
		h.sweepLimiters(now)
	}

	entry, ok := h.limiters[ip]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rate.Every(h.rateEvery), h.rateBurst)}
		h.limiters[ip] = entry
	}

	entry.lastSeen = now

	h.limitersMu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// sweepLimiters drops limiters idle for longer than limiterIdleTTL.
// Callers hold limitersMu.
func (h *Handler) sweepLimiters(now time.Time) {
	for ip, entry := range h.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(h.limiters, ip)
		}
	}

	h.lastSweep = now
}

// clientIP returns the address the limiter keys on. The port is dropped so
// new connections from one host share a limiter. Forwarding headers count
// only when the peer is a trusted proxy.
func (h *Handler) clientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)

	addr, err := netip.ParseAddr(peer)
	if err != nil || !h.isTrustedProxy(addr) {
		return peer
	}

	// Walk right to left: the first hop that is not one of our proxies is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}

			if !h.isTrustedProxy(hop) || i == 0 {
				return hop.Unmap().String()
			}
		}
	}

	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.Unmap().String()
	}

	return peer
}

func (h *Handler) isTrustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()

	for _, p := range h.trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}

	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}

func parseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("parsing trusted proxy %q: %w", entry, err)
			}

			prefixes = append(prefixes, p.Masked())

			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("parsing trusted proxy %q: %w", entry, err)
		}

		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes, nil
}
