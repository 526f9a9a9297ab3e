package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/sales-dashboard/accounts"
	"github.com/jrsteele09/sales-dashboard/auth"
	"github.com/jrsteele09/sales-dashboard/internal/config"
	"github.com/jrsteele09/sales-dashboard/storage"
	"github.com/jrsteele09/sales-dashboard/stores"
	"github.com/jrsteele09/sales-dashboard/users"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Repos are the backends the server reads and writes.
type Repos struct {
	Users  users.UserRepo
	Stores stores.Repo
	Slots  storage.Factory
}

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	repos         Repos
	authenticator auth.Authenticator
	editor        *accounts.Editor
	loginLocks    *clientLocks
	metrics       http.Handler
}

func New(config config.Config, repos Repos) (*Server, error) {
	if repos.Users == nil || repos.Stores == nil || repos.Slots == nil {
		return nil, fmt.Errorf("[server.New] users, stores and slots repos are required")
	}

	authService, err := auth.NewService(repos.Users,
		auth.WithLegacyPolicy(auth.LegacyPlaintextPolicy{
			Allow:         config.GetAllowLegacyPlaintext(),
			RehashOnLogin: config.GetRehashLegacyOnLogin(),
		}),
		auth.WithBcryptCost(config.GetBcryptCost()),
	)
	if err != nil {
		return nil, fmt.Errorf("[server.New] failed to create auth service: %w", err)
	}

	editor, err := accounts.NewEditor(repos.Users, repos.Stores,
		accounts.WithVerifier(authService.Verifier()),
		accounts.WithBcryptCost(config.GetBcryptCost()),
		accounts.WithMinPasswordLength(config.GetMinPasswordLength()),
	)
	if err != nil {
		return nil, fmt.Errorf("[server.New] failed to create account editor: %w", err)
	}

	s := &Server{
		env:           config.GetEnv(),
		mux:           http.NewServeMux(),
		config:        config,
		repos:         repos,
		authenticator: authService,
		editor:        editor,
		loginLocks:    newClientLocks(),
		metrics:       promhttp.Handler(),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
