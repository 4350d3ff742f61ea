package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
)

// AccessAuthorizer is the shared allow/deny policy.
type AccessAuthorizer interface {
	Authorize(ctx context.Context, creds domainauth.Credentials) (domainauth.Decision, error)
}

// GateOptions configures EdgeGate.
type GateOptions struct {
	Policy   AccessAuthorizer
	FailOpen bool // admit requests when the policy itself fails
	Logger   *slog.Logger
}

// SignInPath is the sign-in page.
const SignInPath = "/auth/signin"

// EdgeGate admits a request when its path is public, the guest flag is set,
// or the session token verifies. Every denied request, API routes included,
// is redirected to the sign-in page with a callbackUrl. A policy failure is
// logged and then handled according to FailOpen.
func EdgeGate(opts GateOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			creds := visitorState(w, r).Credentials()
			decision := domainauth.Decision{Outcome: domainauth.OutcomeUnauthorized}
			var err error
			if opts.Policy != nil {
				decision, err = opts.Policy.Authorize(r.Context(), creds)
			}
			if err != nil {
				logger.WarnContext(r.Context(), "edge gate policy failed",
					slog.String("path", r.URL.Path),
					slog.Bool("fail_open", opts.FailOpen),
					slog.Any("error", err),
				)
				if opts.FailOpen {
					next.ServeHTTP(w, r)
					return
				}
				decision = domainauth.Decision{Outcome: domainauth.OutcomeUnauthorized}
			}

			if !decision.Allowed() {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetDecisionInContext(r.Context(), decision)))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request) {
	q := url.Values{}
	q.Set("callbackUrl", safeRedirectPath(r.URL.RequestURI()))
	http.Redirect(w, r, SignInPath+"?"+q.Encode(), http.StatusFound)
}

// isPublicPath lists the paths that never require access.
func isPublicPath(p string) bool {
	switch {
	case p == "/", p == "/favicon.ico", p == "/healthz", p == "/api/health":
		return true
	case strings.HasPrefix(p, "/auth/"), strings.HasPrefix(p, "/api/auth/"), strings.HasPrefix(p, "/static/"):
		return true
	}
	return false
}
