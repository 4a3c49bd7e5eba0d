package server

import (
	"net/http"

	"github.com/jrsteele09/go-adventure-bff/proxy"
)

func (s *Server) initRoutes() {
	// Operations
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())

	// Form actions
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.RateLimitMiddleware))
	s.RegisterRouteFunc("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), s.RateLimitMiddleware))
	s.RegisterRouteFunc("POST "+RouteLogout, s.LogoutHandler())

	// Session
	s.RegisterRouteFunc("GET "+RouteUser, s.CurrentUserHandler())
	s.RegisterRouteFunc("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.RequireUser(PagePolicy)))

	// Preferences
	s.RegisterRouteFunc("POST "+RoutePreferenceTheme, s.ThemePreferenceHandler())
	s.RegisterRouteFunc("POST "+RoutePreferenceLocale, s.LocalePreferenceHandler())

	// Proxy routes
	s.RegisterRouteFunc(RouteAPIProxy, s.ProxyHandler(proxy.FamilyAPI))
	s.RegisterRouteFunc(RouteAuthProxy, s.ProxyHandler(proxy.FamilyAuth))
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		s.RegisterRouteFunc(method+" "+RouteLocationsProxy, ChainMiddleware(s.ProxyHandler(proxy.FamilyAPI), s.LocationGuardMiddleware))
	}
}
