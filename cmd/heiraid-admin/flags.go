package main

import (
	"errors"
	"flag"
	"io"
	"strings"
	"time"
)

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultIngestTimeout    = 30 * time.Minute
	defaultSearchTimeout    = 30 * time.Second
)

type migrateOptions struct {
	Timeout time.Duration
}

type ingestOptions struct {
	Containers []string
	Timeout    time.Duration
	JSON       bool
}

type searchOptions struct {
	Query   string
	Top     int
	Timeout time.Duration
}

type resetQuotaOptions struct {
	Client string
	DryRun bool
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parseMigrateFlags(args []string, out io.Writer) (migrateOptions, error) {
	fs := newFlagSet("migrate", out)
	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseIngestFlags(args []string, out io.Writer) (ingestOptions, error) {
	fs := newFlagSet("ingest", out)
	opts := ingestOptions{}
	var containers string
	fs.StringVar(&containers, "containers", "", "Comma-separated containers to ingest (default: INGEST_CONTAINERS or all)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultIngestTimeout, "Maximum duration of the ingestion run")
	fs.BoolVar(&opts.JSON, "json", false, "Print the report as JSON")

	if err := fs.Parse(args); err != nil {
		return ingestOptions{}, err
	}
	if opts.Timeout <= 0 {
		return ingestOptions{}, errors.New("--timeout must be greater than zero")
	}
	opts.Containers = splitList(containers)
	return opts, nil
}

func parseSearchFlags(args []string, out io.Writer) (searchOptions, error) {
	fs := newFlagSet("search", out)
	opts := searchOptions{}
	fs.StringVar(&opts.Query, "q", "", "Search text (required)")
	fs.IntVar(&opts.Top, "top", 10, "Number of results (1-50)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultSearchTimeout, "Request timeout")

	if err := fs.Parse(args); err != nil {
		return searchOptions{}, err
	}
	if opts.Query == "" && fs.NArg() > 0 {
		opts.Query = strings.Join(fs.Args(), " ")
	}
	if strings.TrimSpace(opts.Query) == "" {
		return searchOptions{}, errors.New("--q is required")
	}
	if opts.Timeout <= 0 {
		return searchOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseResetQuotaFlags(args []string, out io.Writer) (resetQuotaOptions, error) {
	fs := newFlagSet("reset-guest-quota", out)
	opts := resetQuotaOptions{}
	fs.StringVar(&opts.Client, "client", "", "Guest client address as recorded by the quota (required)")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Report the remaining budget without clearing it")

	if err := fs.Parse(args); err != nil {
		return resetQuotaOptions{}, err
	}
	opts.Client = strings.TrimSpace(opts.Client)
	if opts.Client == "" {
		return resetQuotaOptions{}, errors.New("--client is required")
	}
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
