package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisadapter "github.com/heiraid/heiraid-api/internal/adapters/redis"
	"github.com/heiraid/heiraid-api/internal/bootstrap"
	"github.com/heiraid/heiraid-api/internal/service"
)

func withSignals(cmdCtx *commandContext, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := withSignals(cmdCtx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeDB(cmdCtx, db)

	cmdCtx.Logger.Info("running database migrations")
	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return migrateErr
	}
	cmdCtx.Logger.Info("migrations completed successfully")
	return nil
}

func runIngest(cmdCtx *commandContext, args []string) error {
	opts, err := parseIngestFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if !cmdCtx.Config.Storage.Enabled {
		return errors.New("storage is disabled; set STORAGE_ENABLED=true")
	}

	ctx, cancel := withSignals(cmdCtx, opts.Timeout)
	defer cancel()

	var db *sql.DB
	if cmdCtx.Config.Postgres.Enabled {
		db, err = bootstrap.ConnectDB(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		defer closeDB(cmdCtx, db)
	}

	svc, err := buildServices(ctx, cmdCtx, db)
	if err != nil {
		return err
	}
	if svc.Ingest == nil {
		return errors.New("ingestion needs storage and a configured search backend")
	}

	containers := opts.Containers
	if len(containers) == 0 {
		containers = cmdCtx.Config.Ingest.Containers
	}
	report, err := svc.Ingest.Run(ctx, containers)
	if report != nil {
		if perr := printIngestReport(cmdCtx.Out, report, opts.JSON); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	return nil
}

func runValidateStorage(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := withSignals(cmdCtx, defaultSearchTimeout)
	defer cancel()

	svc, err := buildServices(ctx, cmdCtx, nil)
	if err != nil {
		return err
	}
	containers, err := svc.Storage.Validate(ctx)
	if err != nil {
		return fmt.Errorf("validate storage: %w", err)
	}
	return printContainers(cmdCtx.Out, containers)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func runValidateSearch(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := withSignals(cmdCtx, defaultSearchTimeout)
	defer cancel()

	svc, err := buildServices(ctx, cmdCtx, nil)
	if err != nil {
		return err
	}
	p, ok := svc.Index.(pinger)
	if !ok {
		return errors.New("no search backend configured")
	}
	if pingErr := p.Ping(ctx); pingErr != nil {
		return fmt.Errorf("validate search: %w", pingErr)
	}
	return writef(cmdCtx.Out, "Search index %q reachable (%s)\n",
		cmdCtx.Config.Search.IndexName, cmdCtx.Config.Search.Backend)
}

func runSearch(cmdCtx *commandContext, args []string) error {
	opts, err := parseSearchFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := withSignals(cmdCtx, opts.Timeout)
	defer cancel()

	svc, err := buildServices(ctx, cmdCtx, nil)
	if err != nil {
		return err
	}
	top := opts.Top
	result, err := svc.Search.Search(ctx, service.SearchInput{Query: opts.Query, Top: &top})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return printSearchResult(cmdCtx.Out, result)
}

func runResetGuestQuota(cmdCtx *commandContext, args []string) error {
	opts, err := parseResetQuotaFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if !cmdCtx.Config.Redis.Enabled {
		return errors.New("redis is disabled; set REDIS_ENABLED=true")
	}

	ctx, cancel := withSignals(cmdCtx, defaultSearchTimeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(ctx, cmdCtx.Config.Redis, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	quota := redisadapter.NewGuestQuota(client)
	if limit := cmdCtx.Config.Guest.LLMDailyLimit; limit > 0 {
		left, remErr := quota.Remaining(ctx, opts.Client, limit)
		if remErr != nil {
			return remErr
		}
		if werr := writef(cmdCtx.Out, "%s has %d of %d guest requests left\n", opts.Client, left, limit); werr != nil {
			return werr
		}
	}
	if opts.DryRun {
		return nil
	}

	existed, err := quota.Reset(ctx, opts.Client)
	if err != nil {
		return err
	}
	if !existed {
		return writef(cmdCtx.Out, "no usage recorded for %s\n", opts.Client)
	}
	return writef(cmdCtx.Out, "cleared usage for %s\n", opts.Client)
}

func buildServices(ctx context.Context, cmdCtx *commandContext, db *sql.DB) (bootstrap.ServiceContainer, error) {
	svc, err := bootstrap.NewServices(ctx, &bootstrap.ServiceDeps{
		Config: &cmdCtx.Config,
		DB:     db,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return bootstrap.ServiceContainer{}, fmt.Errorf("build services: %w", err)
	}
	return svc, nil
}

func closeDB(cmdCtx *commandContext, db *sql.DB) {
	if cerr := db.Close(); cerr != nil {
		cmdCtx.Logger.Warn("db close failed", "error", cerr)
	}
}
