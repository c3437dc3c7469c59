package api

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/dyike/StockInsights/config"
)

const askPath = "/ask"

// Answerer produces answers for the /ask endpoint.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
	Stream(ctx context.Context, question string) iter.Seq2[string, error]
}

// Server represents the HTTP server
type Server struct {
	assistant  Answerer
	cfg        *config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
	extra      map[string]http.Handler
}

type Option func(*Server)

// WithHandler mounts an additional handler, such as the MCP endpoint, at path.
func WithHandler(path string, h http.Handler) Option {
	return func(s *Server) {
		s.extra[path] = h
	}
}

// NewServer creates a new API server
func NewServer(cfg *config.ServerConfig, assistant Answerer, opts ...Option) *Server {
	s := &Server{
		assistant: assistant,
		cfg:       cfg,
		extra:     map[string]http.Handler{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	s.engine = gin.New()
	s.engine.Use(recovery(), requestLogger(), cors())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.Health)
	if s.assistant != nil {
		s.engine.POST(askPath, s.Ask)
	}

	for path, h := range s.extra {
		s.engine.Any(path, gin.WrapH(h))
	}

	s.engine.NoRoute(s.static())
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down http server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// static serves the frontend for unmatched GET and HEAD requests when the
// directory exists.
func (s *Server) static() gin.HandlerFunc {
	var files http.Handler
	if s.cfg.StaticDir != "" {
		if info, err := os.Stat(s.cfg.StaticDir); err == nil && info.IsDir() {
			files = http.FileServer(http.Dir(s.cfg.StaticDir))
		} else {
			log.Warn().Str("dir", s.cfg.StaticDir).Msg("static directory not found, frontend disabled")
		}
	}

	return func(c *gin.Context) {
		if files == nil || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
