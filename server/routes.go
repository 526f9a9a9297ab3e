package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.WithSession(), s.RequireSession(false))...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare(s.WithSession())...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare(s.WithSession())...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare(s.WithSession())...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionAPIHandler(), s.APIMiddleware(s.WithSession(), s.RequireSession(true))...))
	s.RegisterRouteHandler("GET "+RouteAPINavigation, ChainMiddleware(s.NavigationAPIHandler(), s.APIMiddleware(s.WithSession(), s.RequireSession(true))...))
	s.RegisterRouteHandler("GET "+RouteAPIStores, ChainMiddleware(s.StoresAPIHandler(), s.APIMiddleware(s.WithSession(), s.RequireSession(true))...))
	s.RegisterRouteHandler("GET "+RouteAPIUsers, ChainMiddleware(s.UsersListAPIHandler(), s.APIMiddleware(s.WithSession(), s.RequireSession(true))...))
	s.RegisterRouteHandler("GET "+RouteAPIUser, ChainMiddleware(s.UserGetAPIHandler(), s.APIMiddleware(s.WithSession(), s.RequireSession(true))...))
	s.RegisterRouteHandler("PUT "+RouteAPIUser, ChainMiddleware(s.UserUpdateAPIHandler(), s.APIMiddleware(s.WithSession(), s.RequireSession(true))...))
	s.RegisterRouteHandler("PUT "+RouteAPIProfile, ChainMiddleware(s.ProfileUpdateAPIHandler(), s.APIMiddleware(s.WithSession(), s.RequireSession(true))...))
	s.RegisterRouteHandler("POST "+RouteAPIProfilePassword, ChainMiddleware(s.PasswordChangeAPIHandler(), s.APIMiddleware(s.WithSession(), s.RequireSession(true))...))

	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics)
	s.RegisterRouteFunc("GET "+RouteHealthz, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}
