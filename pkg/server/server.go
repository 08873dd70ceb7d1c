// Package server exposes the retrieval engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lexigraph/lexigraph"
	"github.com/lexigraph/lexigraph/pkg/config"
	"github.com/lexigraph/lexigraph/pkg/server/handlers"
)

// Server is the HTTP front of the retrieval engine.
type Server struct {
	config *config.Config
	engine lexigraph.Engine
	logger *slog.Logger
	router *gin.Engine
	server *http.Server
}

// New creates a server around an engine.
func New(cfg *config.Config, engine lexigraph.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		engine: engine,
		logger: logger,
	}
}

// Setup builds the router, middleware, and routes.
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(s.requestMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// Router returns the gin engine; Setup must have run. Exposed for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.engine)
	retrieveHandler := handlers.NewRetrieveHandler(s.engine, s.config.Retrieval)
	samplesHandler := handlers.NewSamplesHandler(s.config.Questions.SamplesPath, s.logger)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/live", healthHandler.Live)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/retrieve", retrieveHandler.Retrieve)
		v1.POST("/retrieve/compare", retrieveHandler.Compare)
		v1.GET("/modes", retrieveHandler.Modes)
		v1.GET("/questions/samples", samplesHandler.Samples)
	}

	// Legacy route kept for clients of the original API.
	s.router.POST("/retrieve", retrieveHandler.Retrieve)
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("server stopping")
	return s.server.Shutdown(ctx)
}

// corsMiddleware allows browser clients from any origin; the API carries no
// credentials.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Authorization")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestMiddleware tags every request with an ID and logs its outcome.
func (s *Server) requestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		s.logger.Info("request handled",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}
