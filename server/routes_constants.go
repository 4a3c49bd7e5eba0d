package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Form actions
	RouteLogin  = "/login"
	RouteSignup = "/signup"
	RouteLogout = "/logout"

	// Session
	RouteUser      = "/user"
	RouteDashboard = "/dashboard"

	// Preferences
	RoutePreferenceTheme  = "/preferences/theme"
	RoutePreferenceLocale = "/preferences/locale"

	// Proxy routes mirroring the upstream namespaces
	RouteAPIProxy       = "/api/{path...}"
	RouteAuthProxy      = "/auth/{path...}"
	RouteLocationsProxy = "/api/locations/{path...}"

	// Operations
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)

// Cookie names for user preferences.
const (
	themeCookieName  = "colortheme"
	localeCookieName = "locale"
)
