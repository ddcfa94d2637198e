// Package httpapi serves staged artifacts over HTTP.
//
// Routes:
//
//	GET  /healthz            liveness
//	GET  /list               tabular listing of staged artifacts
//	GET  /artifacts/:name    artifact bytes with their content type
//	GET  /live/:kind         normalised rows read straight from a source
//	POST /runs               start an extraction run, when configured
//	GET  /runs/latest        progress of the most recent run
//	GET  /runs/:id           progress of one run
//	GET  /metrics            Prometheus metrics, when configured
//	ANY  /mcp                MCP streamable transport, when configured
//
// Every write method on /artifacts answers 405.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
	"github.com/DIVT313/forensic-agent/internal/logger"
)

// Server holds the state for the retrieval HTTP server.
type Server struct {
	retrieval  driving.RetrievalService
	extraction driving.ExtractionService
	metrics    http.Handler
	mcp        http.Handler
	router     *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithExtraction enables the /runs routes.
func WithExtraction(svc driving.ExtractionService) Option {
	return func(s *Server) { s.extraction = svc }
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMCP mounts an MCP streamable HTTP handler on /mcp.
func WithMCP(h http.Handler) Option {
	return func(s *Server) { s.mcp = h }
}

// NewServer creates a new Server instance.
func NewServer(retrieval driving.RetrievalService, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{
		retrieval: retrieval,
		router:    r,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving artifacts on http://%s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthCheck)
	s.router.GET("/list", s.handleList)
	s.router.GET("/artifacts/:name", s.handleArtifact)
	s.router.HEAD("/list", s.handleList)
	s.router.HEAD("/artifacts/:name", s.handleArtifact)
	s.router.GET("/live/:kind", s.handleLive)

	s.router.POST("/artifacts/*name", s.handleInsert)
	s.router.PUT("/artifacts/*name", s.handleUpdate)
	s.router.PATCH("/artifacts/*name", s.handleUpdate)
	s.router.DELETE("/artifacts/*name", s.handleDelete)

	if s.extraction != nil {
		s.router.POST("/runs", s.handleStartRun)
		s.router.GET("/runs/latest", s.handleLatestRun)
		s.router.GET("/runs/:id", s.handleRunStatus)
	}
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}
	if s.mcp != nil {
		s.router.Any("/mcp", gin.WrapH(s.mcp))
	}
}

// requestLogger logs each request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
