package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses Azure AD (OIDC) for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// AzureADConfig contains the Azure AD (Entra ID) application registration.
type AzureADConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	TenantID     string `env:"TENANT_ID"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:3000/api/auth/callback/azure-ad"`
	Scope        string `env:"SCOPE"        envDefault:"openid profile email offline_access"`
	// Authority overrides the login host (sovereign clouds, tests).
	Authority string `env:"AUTHORITY" envDefault:"https://login.microsoftonline.com"`
}

// Configured reports whether every value required to register the provider is present.
func (c AzureADConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.TenantID != ""
}

// DiscoveryURL returns the tenant-specific OpenID discovery document URL.
func (c AzureADConfig) DiscoveryURL() string {
	if c.TenantID == "" {
		return ""
	}
	return strings.TrimSuffix(c.Authority, "/") + "/" + c.TenantID + "/v2.0/.well-known/openid-configuration"
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string   `env:"USER_ID" envDefault:"dev-user"`
	Name   string   `env:"NAME"    envDefault:"Dev User"`
	Email  string   `env:"EMAIL"   envDefault:"dev@example.com"`
	Groups []string `env:"GROUPS"  envDefault:"heiraid-admins" envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// AzureAD configuration (used when Mode=oauth).
	AzureAD AzureADConfig `envPrefix:"AZURE_AD_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Secret signs and verifies session tokens. Without it no session can be issued
	// or verified; guest mode keeps working.
	Secret string `env:"AUTH_SECRET"`

	// SessionTTL is the lifetime of an issued session token.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`

	// EdgeFailOpen lets requests through when the edge gate hits an unexpected error.
	EdgeFailOpen bool `env:"AUTH_EDGE_FAIL_OPEN" envDefault:"true"`

	// AdminGroup and LegalGroup are Azure AD group object ids mapped to document roles.
	AdminGroup string `env:"AUTH_ADMIN_GROUP" envDefault:"heiraid-admins"`
	LegalGroup string `env:"AUTH_LEGAL_GROUP" envDefault:"heiraid-legal"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.Secret = strings.TrimSpace(a.Secret)
	if a.SessionTTL < time.Minute {
		a.SessionTTL = 24 * time.Hour
	}
}

// GuestConfig controls guest-mode metering.
type GuestConfig struct {
	// LLMDailyLimit caps language-model backed requests per guest client. Zero disables metering.
	LLMDailyLimit int `env:"GUEST_LLM_DAILY_LIMIT" envDefault:"0"`

	// Window is the metering window length.
	Window time.Duration `env:"GUEST_LLM_WINDOW" envDefault:"24h"`
}

// Sanitize applies guardrails to guest configuration values.
func (g *GuestConfig) Sanitize() {
	if g.LLMDailyLimit < 0 {
		g.LLMDailyLimit = 0
	}
	if g.Window <= 0 {
		g.Window = 24 * time.Hour
	}
}
