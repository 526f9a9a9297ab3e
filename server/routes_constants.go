package server

// Route path constants
const (
	RouteIndex = "/"

	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// API Routes
	RouteAPISession         = "/api/session"
	RouteAPINavigation      = "/api/navigation"
	RouteAPIStores          = "/api/stores"
	RouteAPIUsers           = "/api/users"
	RouteAPIUser            = "/api/users/{id}"
	RouteAPIProfile         = "/api/profile"
	RouteAPIProfilePassword = "/api/profile/password"

	// Operations
	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"
)
