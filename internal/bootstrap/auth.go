package bootstrap

import (
	"context"
	"log/slog"

	"github.com/heiraid/heiraid-api/config"
	"github.com/heiraid/heiraid-api/internal/adapters/authroles"
	"github.com/heiraid/heiraid-api/internal/adapters/devauth"
	"github.com/heiraid/heiraid-api/internal/adapters/oidc"
	"github.com/heiraid/heiraid-api/internal/adapters/sessiontoken"
	"github.com/heiraid/heiraid-api/internal/ports"
	"github.com/heiraid/heiraid-api/internal/service"
)

// AzureADProvider describes the single registered sign-in provider.
var AzureADProvider = service.ProviderInfo{ //nolint:gochecknoglobals // read-only descriptor
	ID:   "azure-ad",
	Name: "Azure Active Directory",
	Type: "oauth",
}

// AuthConfig contains configuration for the auth service and access policy.
type AuthConfig struct {
	Auth   config.AuthConfig
	Logger *slog.Logger
}

// AuthBundle is the shared token codec with the services built on it.
type AuthBundle struct {
	Tokens *sessiontoken.Codec
	Auth   *service.AuthService
	Policy *service.AccessPolicy
}

// BuildAuth creates the session token codec, the sign-in service, and the access policy.
// Sign-in is disabled (no providers) when the configured mode lacks settings;
// guest mode and the policy keep working.
func BuildAuth(ctx context.Context, cfg AuthConfig) AuthBundle {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Auth.Secret == "" {
		logger.Warn("AUTH_SECRET not set; sessions cannot be issued or verified")
	}

	tokens := sessiontoken.New(sessiontoken.Options{
		Secret: cfg.Auth.Secret,
		TTL:    cfg.Auth.SessionTTL,
	})
	roles := authroles.StaticRoleMapper{
		AdminGroup: cfg.Auth.AdminGroup,
		LegalGroup: cfg.Auth.LegalGroup,
	}

	return AuthBundle{
		Tokens: tokens,
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Provider: buildAuthProvider(ctx, cfg.Auth, logger),
			Info:     AzureADProvider,
			Tokens:   tokens,
			Roles:    roles,
		}),
		Policy: service.NewAccessPolicy(service.AccessPolicyOptions{
			Tokens: tokens,
			Logger: logger,
		}),
	}
}

// buildAuthProvider returns nil when no provider can be registered.
//
//nolint:ireturn // the provider is selected by AUTH_MODE.
func buildAuthProvider(ctx context.Context, cfg config.AuthConfig, logger *slog.Logger) ports.AuthProvider {
	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:          cfg.DevAuth.UserID,
			Name:            cfg.DevAuth.Name,
			Email:           cfg.DevAuth.Email,
			Groups:          cfg.DevAuth.Groups,
			SessionDuration: cfg.SessionTTL,
		})
		if err != nil {
			logger.Warn("failed to create dev auth provider, sign-in disabled", "error", err)
			return nil
		}
		logger.Warn("dev auth enabled; every sign-in returns the configured identity", "user", cfg.DevAuth.UserID)
		return prov

	case config.AuthModeOAuth:
		ad := cfg.AzureAD
		if !ad.Configured() {
			logger.Warn("azure ad sign-in not configured; sign-in disabled",
				"client_id_empty", ad.ClientID == "",
				"client_secret_empty", ad.ClientSecret == "",
				"tenant_id_empty", ad.TenantID == "",
			)
			return nil
		}
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     ad.ClientID,
			ClientSecret: ad.ClientSecret,
			RedirectURL:  ad.RedirectURL,
			Scope:        ad.Scope,
			DiscoveryURL: ad.DiscoveryURL(),
		})
		if err != nil {
			logger.Warn("failed to create OIDC provider, sign-in disabled", "error", err)
			return nil
		}
		return prov

	default:
		return nil
	}
}
