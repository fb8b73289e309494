package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
)

// Session token layout constants.
const (
	sessionIDSize  = 16 // UUID binary size
	expSize        = 8  // Unix timestamp big-endian
	sigSize        = 16 // Truncated HMAC-SHA256
	payloadSize    = sessionIDSize + expSize
	fullTokenSize  = payloadSize + sigSize
	sessionCookie  = "fakenews_session"
	cookiePathRoot = "/"
)

// Session identifies one browser.
type Session struct {
	ID        string
	ExpiresAt time.Time
}

// SessionService issues and verifies signed session tokens.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a session service with the given secret and TTL.
func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a new session and its signed token.
func (s *SessionService) Issue() (*Session, string) {
	id := uuid.New()
	exp := s.now().Add(s.ttl).Unix()

	// Build payload: session_id (16) | exp (8)
	payload := make([]byte, payloadSize)
	copy(payload[0:sessionIDSize], id[:])

	//nolint:gosec // Unix timestamps fit safely in uint64 for foreseeable future
	binary.BigEndian.PutUint64(payload[sessionIDSize:], uint64(exp))

	sig := s.sign(payload)

	token := make([]byte, fullTokenSize)
	copy(token[0:payloadSize], payload)
	copy(token[payloadSize:], sig[:sigSize])

	return &Session{ID: id.String(), ExpiresAt: time.Unix(exp, 0)}, base64.URLEncoding.EncodeToString(token)
}

// Verify validates and decodes a session token.
func (s *SessionService) Verify(token string) (*Session, error) {
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil || len(data) != fullTokenSize {
		return nil, apperrors.ErrInvalidSession
	}

	payload := data[0:payloadSize]

	expectedSig := s.sign(payload)
	if !hmac.Equal(data[payloadSize:], expectedSig[:sigSize]) {
		return nil, apperrors.ErrInvalidSession
	}

	var id uuid.UUID

	copy(id[:], payload[0:sessionIDSize])

	//nolint:gosec // Unix timestamps fit in int64 for foreseeable future
	expiresAt := time.Unix(int64(binary.BigEndian.Uint64(payload[sessionIDSize:])), 0)

	if s.now().After(expiresAt) {
		return nil, apperrors.ErrInvalidSession
	}

	return &Session{ID: id.String(), ExpiresAt: expiresAt}, nil
}

// FromRequest returns the session carried by the request cookie.
func (s *SessionService) FromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, apperrors.ErrInvalidSession
	}

	return s.Verify(cookie.Value)
}

// sign computes HMAC-SHA256 of the payload.
func (s *SessionService) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)

	return mac.Sum(nil)
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     cookiePathRoot,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		Expires:  expires,
	})
}
