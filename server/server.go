package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-adventure-bff/auth"
	"github.com/jrsteele09/go-adventure-bff/cookies"
	"github.com/jrsteele09/go-adventure-bff/internal/config"
	"github.com/jrsteele09/go-adventure-bff/internal/metrics"
	"github.com/jrsteele09/go-adventure-bff/proxy"
	"github.com/jrsteele09/go-adventure-bff/sessions"
	"github.com/jrsteele09/go-adventure-bff/token/refresh"
	"github.com/jrsteele09/go-adventure-bff/upstream"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	handler   http.Handler // mux wrapped in the global middleware
	routes    []string
	config    config.Config
	upstream  *upstream.Client
	resolver  *sessions.Resolver
	forwarder *proxy.Forwarder
	policy    cookies.Policy
	validator *auth.Validator
	metrics   *metrics.Metrics
	limiter   *RateLimiter
	nowTime   func() time.Time
}

// Option modifies a Server during construction.
type Option func(*Server)

// WithNowTime sets the clock used for cookie expiries (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithValidator replaces the default form validator.
func WithValidator(v *auth.Validator) Option {
	return func(s *Server) {
		s.validator = v
	}
}

// New wires the session proxy around client. m may be nil, in which case
// nothing is recorded and /metrics serves an empty registry.
func New(config config.Config, client *upstream.Client, m *metrics.Metrics, opts ...Option) *Server {
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		upstream:  client,
		resolver:  sessions.NewResolver(client, refresh.NewRefresher(client, config, m), m),
		forwarder: proxy.NewForwarder(client, config),
		policy:    cookies.NewPolicy(config),
		validator: auth.NewValidator(config.GetThemes()...),
		metrics:   m,
		limiter:   NewRateLimiter(config.GetLoginRateLimit(), config.GetLoginRateBurst()),
		nowTime:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.GlobalMiddleware()...)
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
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
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("*", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
