package auth

// Package auth contains domain-level types for identities, sessions, and access decisions.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"time"
)

// Role is the document-visibility role of a visitor.
// String form matches the allowed_roles values stored with indexed documents.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleLegalProfessional Role = "legal_professional"
	RoleClient            Role = "client"
	RolePublic            Role = "public"
)

// Cookie contract shared by the edge gate, the visitor state, and the auth handlers.
const (
	GuestCookieName   = "guest-mode"
	GuestCookieValue  = "true"
	GuestTTL          = 24 * time.Hour
	SessionCookieName = "heiraid.session-token"
)

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject     string // stable user identifier (oid or sub)
	Name        string
	Email       string
	AccessToken string // opaque provider access token
	Groups      []string
	ExpiresAt   time.Time // absolute expiry from IdP token
}

// Session is the set of claims carried by the signed session token.
// Nothing about it is stored server-side.
type Session struct {
	Subject     string    `json:"sub"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	AccessToken string    `json:"accessToken,omitempty"`
	Role        Role      `json:"role,omitempty"`
	IssuedAt    time.Time `json:"iat"`
	ExpiresAt   time.Time `json:"exp"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Outcome is the result of an access decision.
type Outcome int

const (
	OutcomeUnauthorized Outcome = iota
	OutcomeGuest
	OutcomeAuthenticated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGuest:
		return "guest"
	case OutcomeAuthenticated:
		return "authenticated"
	default:
		return "unauthorized"
	}
}

// Credentials are the raw, request-supplied inputs of an access decision.
type Credentials struct {
	GuestFlag    string // value of the guest-mode cookie, empty when absent
	SessionToken string // signed session token, empty when absent
}

// IsGuest reports whether the guest flag grants access. Only the exact value "true" counts.
func (c Credentials) IsGuest() bool { return c.GuestFlag == GuestCookieValue }

// Decision is the authorization outcome for one request.
type Decision struct {
	Outcome Outcome
	Session *Session // set only when Outcome is OutcomeAuthenticated
}

// Allowed reports whether the decision grants access to protected content.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeGuest || d.Outcome == OutcomeAuthenticated
}

// Role returns the document-visibility role implied by the decision.
// Guests and sessions without a mapped role see public documents only.
func (d Decision) Role() Role {
	if d.Outcome == OutcomeAuthenticated && d.Session != nil && d.Session.Role != "" {
		return d.Session.Role
	}
	return RolePublic
}

// Classified token verification failures. All of them mean "not signed in".
var (
	ErrTokenMissing  = errors.New("session token missing")
	ErrTokenInvalid  = errors.New("session token invalid")
	ErrTokenExpired  = errors.New("session token expired")
	ErrSecretMissing = errors.New("session signing secret not configured")
)

// IsVerificationError reports whether err is one of the classified verification failures.
func IsVerificationError(err error) bool {
	return errors.Is(err, ErrTokenMissing) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrSecretMissing)
}
