// Package httpapi serves the public, read-only view of the ledger as JSON.
// Nothing it returns carries ciphertext.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/dmitrijs2005/ghosttips/internal/logging"
	"github.com/gin-gonic/gin"
)

// Ledger is the read side of *ledger.Ledger.
type Ledger interface {
	TipJar(jarID uint64) (ledger.TipJar, error)
	TipJarCount() uint64
	ListTipJars(offset, limit int) []ledger.TipJar
	TopJars(n int) []ledger.Standing
	Exchange() ledger.Exchange
}

type HTTPServer struct {
	address         string
	ledger          Ledger
	logger          logging.Logger
	shutdownTimeout time.Duration
}

func NewHTTPServer(address string, l logging.Logger, lg Ledger, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         address,
		ledger:          lg,
		logger:          l.With("module", "http_server"),
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler returns the gin engine with all routes installed.
func (s *HTTPServer) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger)
	s.InstallAPI(r)
	return r
}

// Run serves until ctx is done, then shuts down within shutdownTimeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "HTTP shutdown", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug(c.Request.Context(), "http request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(start).String())
}
