package server

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// clientCookieName holds the signed client id selecting the durable session slot
const clientCookieName = "dashboard_client"

// issueClientToken signs a client id as the subject of an HS256 token.
func issueClientToken(secret []byte, clientID string, lifetime time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseClientToken returns the client id of a valid, unexpired token.
func parseClientToken(secret []byte, value string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Wrap(err, "parse client token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", errors.Wrap(err, "client token subject")
	}
	return id.String(), nil
}

// clientIdentity returns the caller's client id, issuing a new one when the
// cookie is missing or invalid.
func (s *Server) clientIdentity(w http.ResponseWriter, r *http.Request) (string, error) {
	secret := s.config.GetCookieSecret()
	if cookie, err := r.Cookie(clientCookieName); err == nil && cookie.Value != "" {
		if id, err := parseClientToken(secret, cookie.Value); err == nil {
			return id, nil
		}
	}

	id := uuid.NewString()
	lifetime := s.config.GetClientCookieLifetime()
	token, err := issueClientToken(secret, id, lifetime, time.Now())
	if err != nil {
		return "", errors.Wrap(err, "issue client token")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(lifetime.Seconds()),
	})
	return id, nil
}

// secureCookies reports whether cookies must be marked Secure: always behind an
// https base URL, otherwise only when the request itself arrived over https.
func (s *Server) secureCookies(r *http.Request) bool {
	if strings.HasPrefix(strings.ToLower(s.config.GetBaseURL()), "https://") {
		return true
	}
	return getScheme(r) == "https"
}

// clientLocks tracks login submissions that are still running per client.
type clientLocks struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newClientLocks() *clientLocks {
	return &clientLocks{inFlight: make(map[string]struct{})}
}

// TryAcquire returns false when the client already holds the lock.
func (l *clientLocks) TryAcquire(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.inFlight[clientID]; busy {
		return false
	}
	l.inFlight[clientID] = struct{}{}
	return true
}

func (l *clientLocks) Release(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, clientID)
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string, extra url.Values) {
	query := url.Values{}
	for k, v := range extra {
		query[k] = v
	}
	query.Set("error", errorMsg)
	fullPath := path + "?" + query.Encode()

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
