package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heiraid/heiraid-api/config"
	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/service"
)

func TestBuildAuth_MockModeSignsIn(t *testing.T) {
	bundle := BuildAuth(context.Background(), AuthConfig{
		Auth: config.AuthConfig{
			Mode:       config.AuthModeMock,
			Secret:     "test-secret",
			SessionTTL: time.Hour,
			AdminGroup: "heiraid-admins",
			LegalGroup: "heiraid-legal",
			DevAuth: config.DevAuthConfig{
				UserID: "dev-user",
				Name:   "Dev User",
				Email:  "dev@example.com",
				Groups: []string{"heiraid-legal"},
			},
		},
		Logger: discardLogger(),
	})

	assert.Equal(t, []service.ProviderInfo{AzureADProvider}, bundle.Auth.Providers())

	begin, err := bundle.Auth.BeginLogin(context.Background(), "azure-ad", "http://localhost:3000/api/auth/callback/azure-ad")
	require.NoError(t, err)

	res, err := bundle.Auth.CompleteLogin(context.Background(), service.CompleteLoginInput{
		ProviderID: "azure-ad",
		Code:       "dev",
		State:      begin.State,
		Nonce:      begin.Nonce,
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleLegalProfessional, res.Session.Role)

	sess, err := bundle.Auth.GetSession(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", sess.Email)
}

func TestBuildAuth_UnconfiguredOAuthDisablesSignIn(t *testing.T) {
	bundle := BuildAuth(context.Background(), AuthConfig{
		Auth:   config.AuthConfig{Mode: config.AuthModeOAuth, Secret: "s", AzureAD: config.AzureADConfig{ClientID: "only-id"}},
		Logger: discardLogger(),
	})

	assert.Empty(t, bundle.Auth.Providers())
	_, err := bundle.Auth.BeginLogin(context.Background(), "azure-ad", "http://cb")
	require.ErrorIs(t, err, service.ErrProviderNotConfigured)
	require.NotNil(t, bundle.Policy)
}

func TestBuildAuth_MissingSecretRejectsSessions(t *testing.T) {
	bundle := BuildAuth(context.Background(), AuthConfig{
		Auth:   config.AuthConfig{Mode: config.AuthModeMock, DevAuth: config.DevAuthConfig{UserID: "u", Email: "u@example.com"}},
		Logger: discardLogger(),
	})

	_, err := bundle.Auth.GetSession(context.Background(), "anything")
	require.ErrorIs(t, err, domainauth.ErrSecretMissing)
}
