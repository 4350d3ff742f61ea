package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
)

// authErrorMessages maps auth error codes to the text shown on /auth/error.
var authErrorMessages = map[string]string{ //nolint:gochecknoglobals // read-only lookup
	AuthErrConfiguration: "There is a problem with the server configuration.",
	AuthErrAccessDenied:  "Access denied. You do not have permission to sign in.",
	AuthErrVerification:  "The verification token has expired or has already been used.",
}

const defaultAuthErrorMessage = "An error occurred during authentication."

// AuthErrorMessage returns the message displayed for an auth error code.
func AuthErrorMessage(code string) string {
	if msg, ok := authErrorMessages[code]; ok {
		return msg
	}
	return defaultAuthErrorMessage
}

// AuthPageHandlers serves the sign-in pages and guest-mode switches.
type AuthPageHandlers struct {
	Svc      AuthServiceInterface
	Renderer *TemplateRenderer
	Logger   *slog.Logger
}

func (h *AuthPageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// SignInPage renders the provider list and the guest option.
func (h *AuthPageHandlers) SignInPage(w http.ResponseWriter, r *http.Request) {
	callback := safeRedirectPath(r.URL.Query().Get("callbackUrl"))

	type providerLink struct {
		Name string
		URL  string
	}
	var links []providerLink
	if h.Svc != nil {
		for _, p := range h.Svc.Providers() {
			links = append(links, providerLink{
				Name: p.Name,
				URL:  "/api/auth/signin/" + p.ID + "?" + url.Values{"callbackUrl": {callback}}.Encode(),
			})
		}
	}

	data := NewTemplateData(r, PageMeta{Title: "Sign in", Page: PageSignIn}).
		With("Providers", links).
		With("CallbackURL", callback).
		Build()
	h.render(w, http.StatusOK, PageSignIn, data)
}

// ErrorPage renders the message for ?error=<code>.
func (h *AuthPageHandlers) ErrorPage(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("error")
	data := NewTemplateData(r, PageMeta{Title: "Authentication error", Page: PageAuthError}).
		With("ErrorCode", code).
		With("ErrorMessage", AuthErrorMessage(code)).
		Build()
	h.render(w, http.StatusOK, PageAuthError, data)
}

// EnterGuest sets the guest flag and sends the visitor to the assistant.
func (h *AuthPageHandlers) EnterGuest(w http.ResponseWriter, r *http.Request) {
	visitorState(w, r).EnableGuest()
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// ExitGuest clears the guest flag.
func (h *AuthPageHandlers) ExitGuest(w http.ResponseWriter, r *http.Request) {
	visitorState(w, r).DisableGuest()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthPageHandlers) render(w http.ResponseWriter, status int, page string, data map[string]any) {
	if h.Renderer == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	if err := h.Renderer.Render(w, status, page, data); err != nil {
		h.logger().Error("render page", "page", page, "error", err)
	}
}
