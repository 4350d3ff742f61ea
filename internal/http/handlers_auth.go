package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Providers() []service.ProviderInfo
	BeginLogin(ctx context.Context, providerID, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, token string) (*domainauth.Session, error)
}

// AuthHandlers serves the sign-in API under /api/auth.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

// Error codes accepted by the auth error page.
const (
	AuthErrConfiguration = "Configuration"
	AuthErrAccessDenied  = "AccessDenied"
	AuthErrVerification  = "Verification"
	AuthErrDefault       = "Default"
)

const (
	cookieOAuthState    = "oauth_state"
	cookieOAuthNonce    = "oauth_nonce"
	cookiePostLoginPath = "post_login_redirect"
	oauthCookieMaxAge   = 600
)

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// SignIn starts the provider flow.
// GET /api/auth/signin/{provider}?callbackUrl=<path>.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	callback := safeRedirectPath(r.URL.Query().Get("callbackUrl"))

	result, err := h.Svc.BeginLogin(r.Context(), r.PathValue("provider"), callback)
	if err != nil {
		h.logger().WarnContext(r.Context(), "sign-in could not start", "provider", r.PathValue("provider"), "error", err)
		redirectToAuthError(w, r, classifyAuthError(err))
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: callback})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the provider flow and stores the signed session token.
// GET /api/auth/callback/{provider}?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if idpErr := q.Get("error"); idpErr != "" {
		h.logger().InfoContext(r.Context(), "identity provider returned an error",
			"error", idpErr, "description", q.Get("error_description"))
		redirectToAuthError(w, r, AuthErrAccessDenied)
		return
	}

	code, state := q.Get("code"), q.Get("state")
	stateCookie, err := r.Cookie(cookieOAuthState)
	if code == "" || state == "" || err != nil || stateCookie.Value != state {
		redirectToAuthError(w, r, AuthErrVerification)
		return
	}
	nonceCookie, err := r.Cookie(cookieOAuthNonce)
	if err != nil || nonceCookie.Value == "" {
		redirectToAuthError(w, r, AuthErrVerification)
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		ProviderID: r.PathValue("provider"),
		Code:       code,
		State:      state,
		Nonce:      nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "sign-in could not complete", "error", err)
		redirectToAuthError(w, r, classifyAuthError(err))
		return
	}

	st := visitorState(w, r)
	ttl := time.Until(result.Session.ExpiresAt)
	if result.Session.ExpiresAt.IsZero() || ttl <= 0 {
		ttl = domainauth.GuestTTL
	}
	st.SetSession(result.Token, ttl)
	if st.IsGuestMode() {
		st.DisableGuest()
	}
	h.clearCookie(w, r, cookieOAuthState)
	h.clearCookie(w, r, cookieOAuthNonce)

	h.logger().InfoContext(r.Context(), "signed in", "subject", result.Session.Subject, "role", result.Session.Role)
	http.Redirect(w, r, h.postLoginRedirect(w, r), http.StatusFound)
}

// SignOut clears the session cookie.
// POST /api/auth/signout.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	visitorState(w, r).ClearSession()

	target := safeRedirectPath(r.FormValue("callbackUrl"))
	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"url": target})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// SessionResponse is the body of GET /api/auth/session.
type SessionResponse struct {
	User    *SessionUser `json:"user,omitempty"`
	Expires *time.Time   `json:"expires,omitempty"`
}

// SessionUser is the public part of a session.
type SessionUser struct {
	ID    string          `json:"id"`
	Name  string          `json:"name,omitempty"`
	Email string          `json:"email,omitempty"`
	Role  domainauth.Role `json:"role"`
}

// Session returns the current session, or an empty object when signed out.
// GET /api/auth/session.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	token := visitorState(w, r).SessionToken()
	if token == "" {
		WriteJSON(w, http.StatusOK, SessionResponse{})
		return
	}
	sess, err := h.Svc.GetSession(r.Context(), token)
	if err != nil {
		h.logger().DebugContext(r.Context(), "session lookup failed", "error", err)
		WriteJSON(w, http.StatusOK, SessionResponse{})
		return
	}
	exp := sess.ExpiresAt
	WriteJSON(w, http.StatusOK, SessionResponse{
		User:    &SessionUser{ID: sess.Subject, Name: sess.Name, Email: sess.Email, Role: sess.Role},
		Expires: &exp,
	})
}

// ProviderEntry is one element of GET /api/auth/providers.
type ProviderEntry struct {
	service.ProviderInfo
	SignInURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// Providers lists the configured sign-in providers keyed by id.
// GET /api/auth/providers.
func (h *AuthHandlers) Providers(w http.ResponseWriter, _ *http.Request) {
	out := map[string]ProviderEntry{}
	for _, p := range h.Svc.Providers() {
		out[p.ID] = ProviderEntry{
			ProviderInfo: p,
			SignInURL:    "/api/auth/signin/" + p.ID,
			CallbackURL:  "/api/auth/callback/" + p.ID,
		}
	}
	WriteJSON(w, http.StatusOK, out)
}

func classifyAuthError(err error) string {
	switch {
	case errors.Is(err, service.ErrProviderNotConfigured),
		errors.Is(err, service.ErrUnknownProvider),
		errors.Is(err, domainauth.ErrSecretMissing):
		return AuthErrConfiguration
	case domainauth.IsVerificationError(err):
		return AuthErrVerification
	default:
		return AuthErrDefault
	}
}

func redirectToAuthError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/auth/error?"+url.Values{"error": {code}}.Encode(), http.StatusFound)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values needed to set OAuth cookies.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in short-lived cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	for name, value := range map[string]string{
		cookieOAuthState:    p.State,
		cookieOAuthNonce:    p.Nonce,
		cookiePostLoginPath: p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecureRequest(r),
			SameSite: http.SameSiteLaxMode,
			MaxAge:   oauthCookieMaxAge,
		})
	}
}

// postLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(cookiePostLoginPath)
	if err != nil {
		return "/"
	}
	h.clearCookie(w, r, cookiePostLoginPath)
	return safeRedirectPath(c.Value)
}
