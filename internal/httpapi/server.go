// Package httpapi serves the kitbox JSON API over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/kitbox/internal/observability"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// CORSOrigins lists the browser origins allowed to call the API.
	// Empty means http://localhost:5000.
	CORSOrigins []string
	Version     string
	Logger      zerolog.Logger
}

// Server routes API requests to an attached inventory.
type Server struct {
	inv     types.Inventory
	logger  zerolog.Logger
	version string
	started time.Time
	router  *gin.Engine
}

// NewServer builds the router for inv. The inventory must stay attached
// for the life of the server.
func NewServer(inv types.Inventory, opts Options) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(opts.Logger))
	r.Use(observability.RequestMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  normalizeOrigins(opts.CORSOrigins),
		AllowMethods:  []string{"GET", "POST", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", observability.HeaderRequestID},
		ExposeHeaders: []string{observability.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		inv:     inv,
		logger:  opts.Logger,
		version: opts.Version,
		started: time.Now(),
		router:  r,
	}
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler serving every route.
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
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:5000"}
	}
	return origins
}
