package server

import (
	"context"
	"net/http"

	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClientID stores the client id selecting the durable slot
	ContextKeyClientID ContextKey = "client_id"
	// ContextKeyManager stores the request's session manager
	ContextKeyManager ContextKey = "session_manager"
)

// WithSession builds the session manager for the calling client, restores the
// stored session and injects both into the request context. Every request is
// a fresh page load of the client.
func (s *Server) WithSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			clientID, err := s.clientIdentity(w, r)
			if err != nil {
				log.Err(err).Msg("Failed to establish client identity")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			manager, err := sessions.NewManager(
				s.authenticator,
				s.repos.Slots.Slot(clientID),
				sessions.WithNavigator(sessions.NavigatorFunc(func(path string) {
					redirectSuccess(w, r, path)
				})),
			)
			if err != nil {
				log.Err(err).Msg("Failed to create session manager")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if s.env == "DEV" {
				defer manager.Subscribe(func(state sessions.State, session *sessions.Session) {
					ev := log.Debug().Str("client_id", clientID).Stringer("state", state)
					if session != nil {
						ev = ev.Str("login", session.Login)
					}
					ev.Msg("Session state changed")
				})()
			}
			manager.RestoreSession()

			ctx := context.WithValue(r.Context(), ContextKeyClientID, clientID)
			ctx = context.WithValue(ctx, ContextKeyManager, manager)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireSession rejects requests without an authenticated session. API
// routes get 401 JSON, HTML routes are sent to the login page.
// Must be chained after WithSession.
func (s *Server) RequireSession(api bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := currentSession(r); ok {
				next(w, r)
				return
			}
			if api {
				writeJSONError(w, dasherrors.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
				return
			}
			redirectSuccess(w, r, RouteLogin)
		}
	}
}

func managerFromContext(ctx context.Context) *sessions.Manager {
	m, _ := ctx.Value(ContextKeyManager).(*sessions.Manager)
	return m
}

func clientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyClientID).(string)
	return id
}

func currentSession(r *http.Request) (sessions.Session, bool) {
	m := managerFromContext(r.Context())
	if m == nil {
		return sessions.Session{}, false
	}
	return m.Current()
}
