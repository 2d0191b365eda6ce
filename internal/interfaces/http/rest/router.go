// Package rest exposes the concept map session over HTTP.
package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/infrastructure/observability"
	"brain2-conceptmap/pkg/api"
	"brain2-conceptmap/pkg/auth"
)

// RouterConfig holds what the router needs beyond its handlers.
type RouterConfig struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	EnableTracing  bool
	RequestTimeout time.Duration
}

// Router creates and configures the HTTP router
type Router struct {
	handler   *ConceptMapHandler
	metrics   *observability.Collector
	validator *auth.JWTValidator
	logger    *zap.Logger
	config    RouterConfig
}

// NewRouter creates a new router. metrics and validator may be nil, which
// disables /metrics and authentication.
func NewRouter(
	handler *ConceptMapHandler,
	metrics *observability.Collector,
	validator *auth.JWTValidator,
	logger *zap.Logger,
	config RouterConfig,
) *Router {
	return &Router{
		handler:   handler,
		metrics:   metrics,
		validator: validator,
		logger:    logger,
		config:    config,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(echoRequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(apperrors.RecoveryMiddleware(rt.logger))
	router.Use(apperrors.RequestLoggingMiddleware(rt.logger))
	if rt.metrics != nil {
		router.Use(observability.MetricsMiddleware(rt.metrics))
	}
	if rt.config.EnableTracing {
		router.Use(observability.TracingMiddleware(rt.config.ServiceName))
	}
	if rt.config.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.config.RequestTimeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1/conceptmap", func(r chi.Router) {
		r.Use(auth.Middleware(rt.validator, rt.logger))

		r.Get("/frame", rt.handler.GetFrame)
		r.Post("/events", rt.handler.PostEvent)
		r.Post("/refresh", rt.handler.PostRefresh)
		r.Get("/connections", rt.handler.GetConnections)
		r.Put("/notes", rt.handler.PutNotes)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteHTTPError(w, r, apperrors.NewNotFound("route not found"), rt.logger)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, r, http.StatusMethodNotAllowed, api.ErrorDetail{Type: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	api.Success(w, http.StatusOK, api.HealthResponse{
		Status:  "healthy",
		Service: rt.config.ServiceName,
		Version: rt.config.Version,
	})
}

// echoRequestID returns the request id to the client.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(chimiddleware.RequestIDHeader, chimiddleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	})
}
