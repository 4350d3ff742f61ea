package httpx

import (
	"context"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
)

// decisionKey is an unexported context key type to avoid collisions across packages.
type decisionKey struct{}

// SetDecisionInContext returns a child context carrying the access decision made by the edge gate.
func SetDecisionInContext(ctx context.Context, d domainauth.Decision) context.Context {
	return context.WithValue(ctx, decisionKey{}, d)
}

// DecisionFromContext returns the access decision and whether one was recorded.
func DecisionFromContext(ctx context.Context) (domainauth.Decision, bool) {
	d, ok := ctx.Value(decisionKey{}).(domainauth.Decision)
	return d, ok
}

// GetSessionFromContext returns the authenticated session, or nil for guests and public routes.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if d, ok := DecisionFromContext(ctx); ok && d.Outcome == domainauth.OutcomeAuthenticated {
		return d.Session
	}
	return nil
}

// RoleFromContext returns the document role of the caller. Guests and
// unauthenticated callers are public.
func RoleFromContext(ctx context.Context) domainauth.Role {
	if d, ok := DecisionFromContext(ctx); ok {
		return d.Role()
	}
	return domainauth.RolePublic
}

// IsGuestUser reports whether the request was admitted through guest mode.
func IsGuestUser(ctx context.Context) bool {
	d, ok := DecisionFromContext(ctx)
	return ok && d.Outcome == domainauth.OutcomeGuest
}
