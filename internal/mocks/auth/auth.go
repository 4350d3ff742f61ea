package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.TokenCodec   = (*MemoryTokenCodec)(nil)
	_ ports.RoleMapper   = (*StaticRoleMapper)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://login.example.test/authorize",
		DefaultUser: domainauth.Identity{
			Subject:     "mock-oid-1",
			Name:        "Mock Heir",
			Email:       "mock.heir@example.com",
			AccessToken: "mock-access-token",
			Groups:      []string{"heiraid-clients"},
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://login.example.test/authorize"
	}
	return authURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	user := m.DefaultUser
	if user.Subject == "" {
		user = NewMockAuthProvider().DefaultUser
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemoryTokenCodec issues opaque tokens backed by an in-memory map.
// It never checks expiry so callers exercise their own expiry handling.
type MemoryTokenCodec struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	seq      int

	// IssueErr, when set, is returned by Issue.
	IssueErr error
}

// NewMemoryTokenCodec creates an empty MemoryTokenCodec.
func NewMemoryTokenCodec() *MemoryTokenCodec {
	return &MemoryTokenCodec{sessions: make(map[string]domainauth.Session)}
}

func (m *MemoryTokenCodec) Issue(sess domainauth.Session) (string, error) {
	if m.IssueErr != nil {
		return "", m.IssueErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	tok := fmt.Sprintf("tok-%d-%s", m.seq, sess.Subject)
	m.sessions[tok] = sess
	return tok, nil
}

func (m *MemoryTokenCodec) Verify(token string) (domainauth.Session, error) {
	if strings.TrimSpace(token) == "" {
		return domainauth.Session{}, domainauth.ErrTokenMissing
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok {
		return domainauth.Session{}, domainauth.ErrTokenInvalid
	}
	return sess, nil
}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup string
	LegalGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.LegalGroup != "" && g == m.LegalGroup {
			return domainauth.RoleLegalProfessional
		}
	}
	return domainauth.RoleClient
}
