package ports

// Package ports defines interfaces (hexagonal ports) implemented by internal/adapters
// and orchestrated by internal/service.

import (
	"context"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// TokenCodec signs and verifies session tokens locally.
// Verify must return one of the classified domainauth errors for every
// token that does not grant access.
type TokenCodec interface {
	Issue(sess domainauth.Session) (string, error)
	Verify(token string) (domainauth.Session, error)
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
