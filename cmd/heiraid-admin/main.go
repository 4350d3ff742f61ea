package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/heiraid/heiraid-api/config"
	"github.com/heiraid/heiraid-api/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run document catalog migrations",
			run:         runMigrations,
		},
		"ingest": {
			name:        "ingest",
			description: "Copy documents from storage into the search index and catalog once",
			run:         runIngest,
		},
		"validate-storage": {
			name:        "validate-storage",
			description: "Check storage credentials by listing document containers",
			run:         runValidateStorage,
		},
		"validate-search": {
			name:        "validate-search",
			description: "Check that the search index exists and the credentials are accepted",
			run:         runValidateSearch,
		},
		"search": {
			name:        "search",
			description: "Query the search index",
			run:         runSearch,
		},
		"reset-guest-quota": {
			name:        "reset-guest-quota",
			description: "Clear the LLM usage counter of a guest client",
			run:         runResetGuestQuota,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: heiraid-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-20s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}
