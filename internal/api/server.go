package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/sift/internal/config"
	"github.com/hpungsan/sift/internal/logger"
	"github.com/hpungsan/sift/internal/ops"
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop signal.
const ShutdownTimeout = 5 * time.Second

// Store is what the HTTP API needs from persistence.
type Store interface {
	ops.Store
	Count(ctx context.Context) (int, error)
}

// NewServer creates and configures the HTTP server for the string API,
// listening on cfg.Bind:cfg.Port.
func NewServer(store Store, cfg *config.Config, log *zap.Logger, version string) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
		Handler:           NewHandler(store, cfg, log, version),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(log.Named("http")),
	}
}

// NewHandler builds the routed handler with its middleware chain.
func NewHandler(store Store, cfg *config.Config, log *zap.Logger, version string) http.Handler {
	h := &Handlers{
		store:   store,
		cfg:     cfg,
		log:     log,
		version: version,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("POST /strings", h.HandleCreate)
	mux.HandleFunc("GET /strings", h.HandleList)
	mux.HandleFunc("GET /strings/filter-by-natural-language", h.HandleNaturalLanguage)
	mux.HandleFunc("GET /strings/{value}", h.HandleFetch)
	mux.HandleFunc("DELETE /strings/{value}", h.HandleDelete)
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.HandleFunc("/", h.HandleNotFound)

	var handler http.Handler = mux
	handler = rateLimit(cfg, log, handler)
	handler = cors(handler)
	handler = securityHeaders(handler)
	handler = accessLog(log, handler)
	handler = requestID(handler)

	return handler
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled or the process receives SIGINT/SIGTERM.
func Run(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("sift API listening", zap.String(logger.FieldAddress, "http://"+srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
