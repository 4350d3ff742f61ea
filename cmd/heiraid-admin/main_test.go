package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heiraid/heiraid-api/config"
	"github.com/heiraid/heiraid-api/internal/domain/document"
	"github.com/heiraid/heiraid-api/internal/service"
)

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	assert.Contains(t, out, "Usage: heiraid-admin")
	ingest := strings.Index(out, "  ingest")
	migrate := strings.Index(out, "  migrate")
	search := strings.Index(out, "  search")
	require.True(t, ingest > 0 && migrate > 0 && search > 0)
	assert.Less(t, ingest, migrate)
	assert.Less(t, migrate, search)
}

func TestParseIngestFlags(t *testing.T) {
	opts, err := parseIngestFlags([]string{"--containers", " gpcsf, ,tax ", "--json"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{"gpcsf", "tax"}, opts.Containers)
	assert.True(t, opts.JSON)
	assert.Equal(t, defaultIngestTimeout, opts.Timeout)

	_, err = parseIngestFlags([]string{"--timeout", "0s"}, io.Discard)
	require.Error(t, err)
}

func TestParseSearchFlags(t *testing.T) {
	opts, err := parseSearchFlags([]string{"--top", "3", "probate", "forms"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "probate forms", opts.Query)
	assert.Equal(t, 3, opts.Top)

	_, err = parseSearchFlags(nil, io.Discard)
	require.ErrorContains(t, err, "--q")
}

func TestParseMigrateAndResetFlags(t *testing.T) {
	m, err := parseMigrateFlags([]string{"--timeout", "1m"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, m.Timeout)

	_, err = parseResetQuotaFlags([]string{"--client", "  "}, io.Discard)
	require.Error(t, err)

	r, err := parseResetQuotaFlags([]string{"--client", "203.0.113.1"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.1", r.Client)
}

func TestPrintIngestReport(t *testing.T) {
	report := &service.IngestReport{
		RunID:      "run-1",
		Containers: []string{"gpcsf"},
		Indexed:    2,
		Skipped:    []string{"gpcsf/form.pdf"},
		Failed:     []service.IngestFailure{{Container: "gpcsf", Name: "index.html", Error: "download: denied"}},
	}

	var text bytes.Buffer
	require.NoError(t, printIngestReport(&text, report, false))
	assert.Contains(t, text.String(), "Indexed: 2  Cataloged: 0  Skipped: 1  Failed: 1")
	assert.Contains(t, text.String(), "download: denied")

	var raw bytes.Buffer
	require.NoError(t, printIngestReport(&raw, report, true))
	var decoded service.IngestReport
	require.NoError(t, json.Unmarshal(raw.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
}

func TestPrintSearchResult(t *testing.T) {
	var empty bytes.Buffer
	require.NoError(t, printSearchResult(&empty, &service.SearchResult{}))
	assert.Equal(t, "No documents found.\n", empty.String())

	var buf bytes.Buffer
	require.NoError(t, printSearchResult(&buf, &service.SearchResult{
		Results: []document.Document{{ID: "ocga_53_txt", Title: "OCGA 53", DocumentType: "legal_statute", Score: 1.5}},
		Count:   1,
	}))
	assert.Contains(t, buf.String(), "ocga_53_txt")
	assert.Contains(t, buf.String(), "1 result(s)")
}

func TestRunIngestRequiresStorage(t *testing.T) {
	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.AppConfig{},
		Out:    io.Discard,
	}
	require.ErrorContains(t, runIngest(cmdCtx, nil), "STORAGE_ENABLED")
	require.ErrorContains(t, runResetGuestQuota(cmdCtx, []string{"--client", "x"}), "REDIS_ENABLED")
}

func TestRunValidateSearchWithoutBackend(t *testing.T) {
	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.AppConfig{
			Auth: config.AuthConfig{
				Mode:       config.AuthModeMock,
				Secret:     "test-secret",
				SessionTTL: time.Hour,
				DevAuth:    config.DevAuthConfig{UserID: "dev", Email: "dev@example.com"},
			},
		},
		Out: io.Discard,
	}
	require.ErrorContains(t, runValidateSearch(cmdCtx, nil), "no search backend configured")
}

func TestRunResetGuestQuota(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("guest-quota:203.0.113.1", "2"))

	var out bytes.Buffer
	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.AppConfig{
			Redis: config.RedisConfig{Enabled: true, URI: mr.Addr()},
			Guest: config.GuestConfig{LLMDailyLimit: 5},
		},
		Out: &out,
	}

	require.NoError(t, runResetGuestQuota(cmdCtx, []string{"--client", "203.0.113.1", "--dry-run"}))
	assert.Equal(t, "203.0.113.1 has 3 of 5 guest requests left\n", out.String())
	assert.True(t, mr.Exists("guest-quota:203.0.113.1"))

	out.Reset()
	require.NoError(t, runResetGuestQuota(cmdCtx, []string{"--client", "203.0.113.1"}))
	assert.Contains(t, out.String(), "cleared usage for 203.0.113.1")
	assert.False(t, mr.Exists("guest-quota:203.0.113.1"))

	out.Reset()
	require.NoError(t, runResetGuestQuota(cmdCtx, []string{"--client", "203.0.113.1"}))
	assert.Contains(t, out.String(), "5 of 5 guest requests left")
	assert.Contains(t, out.String(), "no usage recorded for 203.0.113.1")
}
