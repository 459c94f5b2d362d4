// Package rest provides the HTTP API for uploading documents and reading
// stored requirements.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/reqsift/internal/core/ports/driving"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// Defaults for the upload endpoint.
const (
	DefaultMaxFiles        = 10
	DefaultMaxUploadMemory = 32 << 20
	shutdownTimeout        = 10 * time.Second
)

// Config holds server options.
type Config struct {
	// UploadDir is where uploads are staged. Empty uses the OS temp dir.
	UploadDir string

	// MaxFiles caps the files accepted per upload (default 10).
	MaxFiles int
}

// Server holds the state for the REST API server.
type Server struct {
	extraction driving.ExtractionService
	uploadDir  string
	maxFiles   int
	router     *gin.Engine
}

// NewServer creates a new Server instance.
func NewServer(extraction driving.ExtractionService, cfg Config) *Server {
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = DefaultMaxFiles
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.MaxMultipartMemory = DefaultMaxUploadMemory

	s := &Server{
		extraction: extraction,
		uploadDir:  cfg.UploadDir,
		maxFiles:   cfg.MaxFiles,
		router:     r,
	}
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/requirements", s.handleRequirements)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs each request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
