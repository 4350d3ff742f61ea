package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/ports"
)

// AccessPolicyOptions groups dependencies for AccessPolicy.
type AccessPolicyOptions struct {
	Tokens ports.TokenCodec // nil behaves like a missing signing secret
	Logger *slog.Logger
	Now    func() time.Time
}

// AccessPolicy is the single allow/deny decision shared by the edge gate,
// the route guard and the API handlers. A request is allowed iff it carries
// the guest flag or a valid session token.
type AccessPolicy struct {
	tokens ports.TokenCodec
	logger *slog.Logger
	now    func() time.Time
}

// NewAccessPolicy constructs an AccessPolicy.
func NewAccessPolicy(opts AccessPolicyOptions) *AccessPolicy {
	p := &AccessPolicy{tokens: opts.Tokens, logger: opts.Logger, now: opts.Now}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Authorize decides whether creds grant access.
//
// The guest flag short-circuits token verification. Classified verification
// failures (missing secret, malformed, bad signature, expired) yield
// OutcomeUnauthorized with a nil error. Any other failure, including a panic
// inside the codec, is returned so the caller can apply its own policy.
func (p *AccessPolicy) Authorize(ctx context.Context, creds domainauth.Credentials) (domainauth.Decision, error) {
	deny := domainauth.Decision{Outcome: domainauth.OutcomeUnauthorized}

	if creds.IsGuest() {
		return domainauth.Decision{Outcome: domainauth.OutcomeGuest}, nil
	}
	if creds.SessionToken == "" {
		return deny, nil
	}
	if err := ctx.Err(); err != nil {
		return deny, err
	}
	if p.tokens == nil {
		p.logger.DebugContext(ctx, "session token present but no signing secret configured")
		return deny, nil
	}

	sess, err := p.verify(creds.SessionToken)
	if err != nil {
		if domainauth.IsVerificationError(err) {
			p.logger.DebugContext(ctx, "session token rejected", "error", err)
			return deny, nil
		}
		return deny, fmt.Errorf("verify session token: %w", err)
	}
	if sess.Expired(p.now()) {
		return deny, nil
	}

	return domainauth.Decision{Outcome: domainauth.OutcomeAuthenticated, Session: &sess}, nil
}

func (p *AccessPolicy) verify(token string) (sess domainauth.Session, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("session verifier panic: %v", rec)
		}
	}()
	return p.tokens.Verify(token)
}
