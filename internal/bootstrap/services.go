package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heiraid/heiraid-api/config"
	"github.com/heiraid/heiraid-api/internal/adapters/ingestrunner"
	redisadapter "github.com/heiraid/heiraid-api/internal/adapters/redis"
	"github.com/heiraid/heiraid-api/internal/data"
	"github.com/heiraid/heiraid-api/internal/ports"
	"github.com/heiraid/heiraid-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Policy    *service.AccessPolicy
	Search    *service.SearchService
	Assistant *service.AssistantService
	Storage   *service.StorageService
	Documents *service.DocumentService
	Ingest    *service.IngestService // nil when storage or search is missing
	Quota     ports.GuestQuota       // nil when redis is disabled
	Index     ports.SearchIndex      // nil when no search backend is configured
}

// ServiceDeps groups dependencies for service initialization.
// DB and RedisClient are optional.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices builds vendor adapters from configuration and wires the services.
// Vendors that are not configured leave their routes answering with errors
// instead of failing startup.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	index, err := BuildSearchIndex(cfg.Search, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	chat, err := BuildChatModel(ctx, cfg.LLM, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	store, err := BuildBlobStore(ctx, cfg.Storage, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	var blobs ports.BlobStore
	if store != nil {
		blobs = store
	}
	var catalog ports.DocumentCatalog
	if deps.DB != nil {
		catalog = data.NewDocumentRepo(deps.DB)
	}

	authBundle := BuildAuth(ctx, AuthConfig{Auth: cfg.Auth, Logger: logger})
	search := service.NewSearchService(service.SearchServiceOptions{Index: index, Logger: logger})

	temperature := cfg.LLM.Temperature
	container := ServiceContainer{
		Auth:   authBundle.Auth,
		Policy: authBundle.Policy,
		Search: search,
		Assistant: service.NewAssistantService(service.AssistantServiceOptions{
			Search: search,
			Chat:   chat,
			Settings: service.AssistantSettings{
				Temperature: &temperature,
				MaxTokens:   cfg.LLM.MaxTokens,
			},
			Logger: logger,
		}),
		Storage:   service.NewStorageService(service.StorageServiceOptions{Store: blobs, Logger: logger}),
		Documents: service.NewDocumentService(service.DocumentServiceOptions{Catalog: catalog, Logger: logger}),
		Index:     index,
	}

	if blobs != nil && index != nil {
		ingest, ierr := service.NewIngestService(service.IngestServiceOptions{
			Store:        blobs,
			Index:        index,
			Catalog:      catalog,
			Concurrency:  cfg.Ingest.Concurrency,
			MaxBlobBytes: cfg.Ingest.MaxDocumentBytes,
			Logger:       logger,
		})
		if ierr != nil {
			return ServiceContainer{}, fmt.Errorf("build ingest service: %w", ierr)
		}
		container.Ingest = ingest
	}

	if deps.RedisClient != nil {
		container.Quota = redisadapter.NewGuestQuota(deps.RedisClient)
	} else if cfg.Guest.LLMDailyLimit > 0 {
		logger.Warn("guest metering configured without redis; guests are not metered",
			"limit", cfg.Guest.LLMDailyLimit)
	}

	return container, nil
}

// ServiceOrchestrationConfig contains dependencies for running enabled services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

// RunServicesWithShutdown starts all enabled services and blocks until a
// shutdown signal arrives or a service fails.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, len(enabled)+1)

	var server *http.Server
	if enabled[config.ServiceModeHTTP] {
		server = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
			ErrCh:    errCh,
		})
	}

	var handles []backgroundServiceHandle
	for _, svc := range buildBackgroundServices(cfg) {
		if !enabled[svc.mode] {
			continue
		}
		handles = append(handles, launchBackground(serviceCtx, svc, errCh, logger))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
		logger.Info("shutting down services...")
	case <-ctx.Done():
		logger.Info("shutting down services...", "reason", ctx.Err())
	case runErr = <-errCh:
		logger.Error("service error", "error", runErr)
	}
	cancel()

	if stopErr := gracefulStop(server, handles, logger); stopErr != nil {
		return errors.Join(runErr, stopErr)
	}
	return runErr
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig) []backgroundService {
	return []backgroundService{
		{
			mode: config.ServiceModeIngest,
			name: "ingest runner",
			start: func(ctx context.Context) error {
				if cfg.Services.Ingest == nil {
					return errors.New("ingest runner requires storage and a search backend")
				}
				runner, err := ingestrunner.NewRunner(ingestrunner.RunnerOptions{
					Ingester:   cfg.Services.Ingest,
					Containers: cfg.Config.Ingest.Containers,
					Interval:   cfg.Config.Ingest.Interval,
					RunOnStart: true,
					Logger:     cfg.Logger,
				})
				if err != nil {
					return fmt.Errorf("create ingest runner: %w", err)
				}
				return runner.Run(ctx)
			},
		},
	}
}

func launchBackground(
	ctx context.Context,
	svc backgroundService,
	errCh chan<- error,
	logger *slog.Logger,
) backgroundServiceHandle {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := svc.start(ctx); err != nil {
			select {
			case errCh <- fmt.Errorf("%s failed: %w", svc.name, err):
			default:
				logger.WarnContext(ctx, "dropping background service error", "service", svc.name, "error", err)
			}
		}
	}()
	logger.InfoContext(ctx, "background service started", "service", svc.name, "mode", svc.mode)
	return backgroundServiceHandle{name: svc.name, done: done}
}

// gracefulStop stops the HTTP server, then waits for background services.
func gracefulStop(server *http.Server, handles []backgroundServiceHandle, logger *slog.Logger) error {
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()
		if err := ShutdownHTTPServer(ctx, server, logger); err != nil {
			return err
		}
	}
	for _, h := range handles {
		select {
		case <-h.done:
			logger.Info(h.name + " stopped")
		case <-time.After(shutdownWaitTimeout):
			logger.Warn("timeout waiting for " + h.name + " to stop")
		}
	}
	return nil
}
