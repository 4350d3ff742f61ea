package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/ports"
)

// ProviderInfo describes the sign-in provider offered on the sign-in page.
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider // nil when no sign-in provider is configured
	Info     ProviderInfo
	Tokens   ports.TokenCodec
	Roles    ports.RoleMapper
}

// AuthService runs the sign-in flow and turns the resulting identity into a signed session token.
// Nothing is persisted; the token is the session.
type AuthService struct {
	provider ports.AuthProvider
	info     ProviderInfo
	tokens   ports.TokenCodec
	roles    ports.RoleMapper
	now      func() time.Time
}

var (
	// ErrProviderNotConfigured is returned when sign-in is attempted without a provider.
	ErrProviderNotConfigured = errors.New("sign-in provider not configured")
	// ErrUnknownProvider is returned when a sign-in route names a provider that is not registered.
	ErrUnknownProvider = errors.New("unknown sign-in provider")
)

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider: opts.Provider,
		info:     opts.Info,
		tokens:   opts.Tokens,
		roles:    opts.Roles,
		now:      time.Now,
	}
}

// Providers lists the registered sign-in providers. It is empty when none is configured.
func (s *AuthService) Providers() []ProviderInfo {
	if s == nil || s.provider == nil {
		return nil
	}
	return []ProviderInfo{s.info}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow with providerID and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, providerID, redirectURL string) (*BeginLoginResult, error) {
	if err := s.checkProvider(providerID); err != nil {
		return nil, err
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	ProviderID string
	Code       string
	State      string
	Nonce      string
}

// CompleteLoginResult contains the session and its signed token.
type CompleteLoginResult struct {
	Session domainauth.Session
	Token   string
}

// CompleteLogin exchanges the authorization code for an identity, maps its
// groups to a role, and issues a signed session token.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if err := s.checkProvider(input.ProviderID); err != nil {
		return nil, err
	}
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}
	if s.tokens == nil {
		return nil, domainauth.ErrSecretMissing
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	role := domainauth.RoleClient
	if s.roles != nil {
		role = s.roles.Map(identity.Groups)
	}

	sess := domainauth.Session{
		Subject:     identity.Subject,
		Name:        identity.Name,
		Email:       identity.Email,
		AccessToken: identity.AccessToken,
		Role:        role,
		IssuedAt:    s.now(),
	}

	token, err := s.tokens.Issue(sess)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	// Read the expiry back from the token so the cookie lifetime matches it.
	if issued, verr := s.tokens.Verify(token); verr == nil {
		sess = issued
	}

	return &CompleteLoginResult{Session: sess, Token: token}, nil
}

// GetSession verifies token and returns its session.
func (s *AuthService) GetSession(_ context.Context, token string) (*domainauth.Session, error) {
	if token == "" {
		return nil, domainauth.ErrTokenMissing
	}
	if s.tokens == nil {
		return nil, domainauth.ErrSecretMissing
	}

	sess, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, domainauth.ErrTokenExpired
	}
	return &sess, nil
}

func (s *AuthService) checkProvider(providerID string) error {
	if s.provider == nil {
		return ErrProviderNotConfigured
	}
	if providerID != "" && providerID != s.info.ID {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}
	return nil
}
