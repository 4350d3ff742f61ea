package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "http and ingest",
			input:    "http,ingest",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeIngest: true},
		},
		{
			name:     "services with spaces",
			input:    " http , ingest ",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeIngest: true},
		},
		{
			name:     "duplicate services",
			input:    "http,http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only spaces and commas",
			input:       " , , ",
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,scheduler",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	cfg := AppConfig{Services: "ingest"}
	if cfg.IsHTTPServerEnabled() {
		t.Errorf("IsHTTPServerEnabled(): expected false")
	}
	if !cfg.IsIngestRunnerEnabled() {
		t.Errorf("IsIngestRunnerEnabled(): expected true")
	}

	cfg = AppConfig{Services: "invalid-service"}
	if cfg.IsHTTPServerEnabled() || cfg.IsIngestRunnerEnabled() {
		t.Errorf("expected every service disabled for invalid configuration")
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("AZURE_AD_CLIENT_ID", "app-client")
	t.Setenv("AZURE_AD_CLIENT_SECRET", "super-secret")
	t.Setenv("AZURE_AD_TENANT_ID", "tenant-1")
	t.Setenv("AUTH_SECRET", " signing-secret ")
	t.Setenv("AUTH_SESSION_TTL", "2h")
	t.Setenv("AUTH_EDGE_FAIL_OPEN", "false")
	t.Setenv("DEV_AUTH_GROUPS", "admins;devs")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if !cfg.Auth.AzureAD.Configured() {
		t.Fatalf("expected azure ad to be configured")
	}
	if got := cfg.Auth.AzureAD.DiscoveryURL(); got != "https://login.microsoftonline.com/tenant-1/v2.0/.well-known/openid-configuration" {
		t.Fatalf("unexpected discovery url %q", got)
	}
	if cfg.Auth.Secret != "signing-secret" {
		t.Fatalf("expected secret to be trimmed, got %q", cfg.Auth.Secret)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected session ttl %v", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.EdgeFailOpen {
		t.Fatalf("expected edge gate to fail closed")
	}
	if !reflect.DeepEqual(cfg.Auth.DevAuth.Groups, []string{"admins", "devs"}) {
		t.Fatalf("unexpected dev groups %v", cfg.Auth.DevAuth.Groups)
	}
}

func TestAzureADConfig_PartialIsNotConfigured(t *testing.T) {
	cases := []AzureADConfig{
		{ClientSecret: "s", TenantID: "t"},
		{ClientID: "c", TenantID: "t"},
		{ClientID: "c", ClientSecret: "s"},
	}
	for _, c := range cases {
		if c.Configured() {
			t.Errorf("expected %+v to be unconfigured", c)
		}
	}
	if (AzureADConfig{}).DiscoveryURL() != "" {
		t.Errorf("expected empty discovery url without tenant")
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Search.IndexName != "heiraid-index" {
		t.Errorf("unexpected index name %q", cfg.Search.IndexName)
	}
	if cfg.Search.Azure.APIVersion != "2023-11-01" {
		t.Errorf("unexpected api version %q", cfg.Search.Azure.APIVersion)
	}
	if cfg.LLM.Temperature != 0.7 || cfg.LLM.MaxTokens != 800 {
		t.Errorf("unexpected llm defaults %v/%d", cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	}
	if !cfg.Auth.EdgeFailOpen {
		t.Errorf("expected edge gate to fail open by default")
	}
	if cfg.Guest.LLMDailyLimit != 0 {
		t.Errorf("expected guest metering disabled by default")
	}
}

func TestLLMConfig_Sanitize(t *testing.T) {
	cfg := LLMConfig{Provider: LLMProviderGemini, Model: "gpt-4o", Temperature: 5, MaxTokens: 0}
	cfg.Sanitize()

	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("expected gemini default model, got %q", cfg.Model)
	}
	if cfg.Temperature != 2 {
		t.Errorf("expected temperature clamp, got %v", cfg.Temperature)
	}
	if cfg.MaxTokens != 800 {
		t.Errorf("expected max tokens default, got %d", cfg.MaxTokens)
	}
}

func TestIngestConfig_Sanitize(t *testing.T) {
	cfg := IngestConfig{Containers: []string{" gpcsf ", "", "tax"}, Concurrency: 0, Interval: time.Second}
	cfg.Sanitize()

	if !reflect.DeepEqual(cfg.Containers, []string{"gpcsf", "tax"}) {
		t.Errorf("unexpected containers %v", cfg.Containers)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("expected concurrency clamp, got %d", cfg.Concurrency)
	}
	if cfg.Interval != time.Minute {
		t.Errorf("expected interval clamp, got %v", cfg.Interval)
	}
}

func TestSearchBackend_UnmarshalText(t *testing.T) {
	var b SearchBackend
	if err := b.UnmarshalText([]byte(" OpenSearch ")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != SearchBackendOpenSearch {
		t.Fatalf("unexpected backend %q", b)
	}
	if err := b.UnmarshalText([]byte("solr")); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
