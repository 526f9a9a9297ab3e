package server

import (
	"net/http"
	"net/url"

	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/navigation"
	"github.com/jrsteele09/sales-dashboard/roles"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Login   string // Preserve login on error
}

// IndexPageData contains data for rendering the dashboard shell
type IndexPageData struct {
	AppName   string
	Name      string
	RoleLabel string
	StoreID   int
	Entries   []navigation.Entry
}

// IndexHandler renders the dashboard shell for the signed in user
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := currentSession(r)
		data := IndexPageData{
			AppName:   s.config.GetAppName(),
			Name:      session.Name,
			RoleLabel: roles.Label(session.Role),
			StoreID:   session.StoreID,
			Entries:   navigation.Entries(session.Role),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render index template")
		}
	}
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentSession(r); ok {
			redirectSuccess(w, r, RouteIndex)
			return
		}

		data := LoginPageData{
			AppName: s.config.GetAppName(),
			Error:   r.URL.Query().Get("error"),
			Login:   r.URL.Query().Get("login"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form submission (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		login := r.FormValue("login")
		password := r.FormValue("senha")

		clientID := clientIDFromContext(r.Context())
		if !s.loginLocks.TryAcquire(clientID) {
			http.Error(w, dasherrors.ErrLoginInProgress.Error(), http.StatusTooManyRequests)
			return
		}
		defer s.loginLocks.Release(clientID)

		manager := managerFromContext(r.Context())
		if err := manager.Login(r.Context(), login, password); err != nil {
			if dasherrors.Is(err, dasherrors.ErrLoginInProgress) {
				http.Error(w, err.Error(), http.StatusTooManyRequests)
				return
			}
			redirectWithError(w, r, RouteLogin, err.Error(), url.Values{"login": {login}})
			return
		}

		redirectSuccess(w, r, RouteIndex)
	}
}

// LogoutHandler clears the session; the manager redirects to the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		managerFromContext(r.Context()).Logout()
	}
}
