package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/heiraid/heiraid-api/config"
	httpx "github.com/heiraid/heiraid-api/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// ErrCh receives the listener error when the server stops unexpectedly. Optional.
	ErrCh chan<- error
}

// RouterServices maps the service container onto the router's dependencies.
func RouterServices(appCfg *config.AppConfig, svc ServiceContainer, logger *slog.Logger) httpx.RouterServices {
	rs := httpx.RouterServices{
		Search:         svc.Search,
		Assistant:      svc.Assistant,
		Storage:        svc.Storage,
		Documents:      svc.Documents,
		GuestLimit:     appCfg.Guest.LLMDailyLimit,
		GuestWindow:    appCfg.Guest.Window,
		TrustedProxies: appCfg.HTTP.TrustedProxies,
		CookieDomain:   appCfg.HTTP.CookieDomain,
		FailOpen:       appCfg.Auth.EdgeFailOpen,
		MapsKey:        appCfg.Maps.Key,
		IsDev:          appCfg.IsDev,
		Logger:         logger,
	}
	// Interface fields stay nil unless a concrete service exists.
	if svc.Auth != nil {
		rs.Auth = svc.Auth
	}
	if svc.Policy != nil {
		rs.Policy = svc.Policy
	}
	if svc.Quota != nil {
		rs.Quota = svc.Quota
	}
	return rs
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := httpx.NewRouter(RouterServices(appCfg, cfg.Services, logger))
	server := newServer(handler, appCfg.HTTP)

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if cfg.ErrCh != nil {
				select {
				case cfg.ErrCh <- fmt.Errorf("http server: %w", err):
				default:
				}
			}
		}
	}()

	return server
}

func newServer(handler http.Handler, cfg config.HTTPConfig) *http.Server {
	addr := cfg.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":3000"
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 60 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger != nil {
		logger.Info("shutting down HTTP server")
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}
