// Package server exposes the timeline engine over HTTP using gin.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/watchgraph/chronicle"
	"github.com/watchgraph/chronicle/pkg/config"
	"github.com/watchgraph/chronicle/pkg/server/handlers"
	"github.com/watchgraph/chronicle/pkg/store"
	"github.com/watchgraph/chronicle/pkg/telemetry"
	"github.com/watchgraph/chronicle/pkg/types"
)

// Server represents the HTTP server.
type Server struct {
	config    *config.Config
	router    *gin.Engine
	client    *chronicle.Client
	timelines handlers.TimelineService
	server    *http.Server
}

// New creates a new server instance. timelines may be nil, in which
// case timelines are generated directly on every request.
func New(cfg *config.Config, client *chronicle.Client, timelines handlers.TimelineService) *Server {
	if timelines == nil {
		timelines = directTimelines{gen: client}
	}
	return &Server{
		config:    cfg,
		client:    client,
		timelines: timelines,
	}
}

// Setup sets up the server routes and middleware.
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes.
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.client)

	// The ingest endpoints are only enabled when the underlying store
	// is writable.
	writer, _ := s.client.Store().(store.RecordWriter)
	timelineHandler := handlers.NewTimelineHandler(s.client, s.client, s.timelines, writer)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/healthcheck", healthHandler.HealthCheck) // Legacy endpoint
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/timeline/:id", timelineHandler.GetTimeline)
		v1.DELETE("/timeline/:id", timelineHandler.InvalidateTimeline)
		v1.GET("/related/:id", timelineHandler.GetRelated)
		v1.GET("/cycles/:id", timelineHandler.GetCycles)

		v1.POST("/records", timelineHandler.AddRecord)
		v1.POST("/relations", timelineHandler.AddRelation)
	}
}

// Router returns the configured gin engine. Setup must have been
// called first.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// directTimelines generates timelines without a cache layer.
type directTimelines struct {
	gen chronicle.TimelineGenerator
}

func (d directTimelines) Timeline(ctx context.Context, rootID string) (*types.Timeline, error) {
	return d.gen.GenerateTimeline(ctx, rootID)
}

func (d directTimelines) Invalidate(string) error { return nil }

// corsMiddleware adds CORS headers.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware stamps each request with an identifier so error
// telemetry can be correlated back to the originating call.
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = context.WithValue(ctx, telemetry.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, telemetry.ContextKeyRequestSource, c.FullPath())

		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
