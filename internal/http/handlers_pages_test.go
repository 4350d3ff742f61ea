package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/service"
)

func servePage(t *testing.T, h http.HandlerFunc, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	Visitor(visitorOptionsForTest())(h).ServeHTTP(rec, req)
	return rec
}

var guestCookie = &http.Cookie{Name: domainauth.GuestCookieName, Value: domainauth.GuestCookieValue} //nolint:gochecknoglobals // test fixture

func TestPageHandlers_GuardedPages(t *testing.T) {
	pages := &PageHandlers{Renderer: newTestRenderer(t), Policy: &stubPolicy{}, Logger: discardLogger()}

	t.Run("unauthorized redirects to sign-in", func(t *testing.T) {
		rec := servePage(t, pages.Chat, "/chat")
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/signin", rec.Header().Get("Location"))
	})

	t.Run("guest sees the page", func(t *testing.T) {
		rec := servePage(t, pages.Chat, "/chat", guestCookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "chat role=Public guest=true")
	})

	t.Run("signed-in visitor sees their role", func(t *testing.T) {
		rec := servePage(t, pages.Chat, "/chat", &http.Cookie{Name: domainauth.SessionCookieName, Value: "good"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "chat role=Legal professional guest=false")
	})

	t.Run("profile shows the user", func(t *testing.T) {
		rec := servePage(t, pages.Profile, "/profile", &http.Cookie{Name: domainauth.SessionCookieName, Value: "good"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "profile Ada")
	})

	t.Run("documents", func(t *testing.T) {
		rec := servePage(t, pages.Documents, "/documents", guestCookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<title>Documents</title>")
	})
}

func TestPageHandlers_MapKeyOnlyWhenSet(t *testing.T) {
	without := &PageHandlers{Renderer: newTestRenderer(t), Policy: &stubPolicy{}}
	rec := servePage(t, without.Map, "/map", guestCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "map key=none")

	with := &PageHandlers{Renderer: newTestRenderer(t), Policy: &stubPolicy{}, MapsKey: "k-123"}
	rec = servePage(t, with.Map, "/map", guestCookie)
	assert.Contains(t, rec.Body.String(), "map key=k-123")
}

func TestPageHandlers_HomeIsPublic(t *testing.T) {
	pages := &PageHandlers{Renderer: newTestRenderer(t), Policy: &stubPolicy{}}
	rec := servePage(t, pages.Home, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "home guest=false")
}

func TestPageHandlers_NoRenderer(t *testing.T) {
	pages := &PageHandlers{Policy: &stubPolicy{}}
	rec := servePage(t, pages.Home, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthPageHandlers_SignInPage(t *testing.T) {
	h := &AuthPageHandlers{
		Svc:      &stubAuth{providers: []service.ProviderInfo{{ID: "azure-ad", Name: "Azure AD"}}},
		Renderer: newTestRenderer(t),
	}
	rec := servePage(t, h.SignInPage, "/auth/signin?callbackUrl=%2Fmap")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/api/auth/signin/azure-ad?callbackUrl=%2Fmap"`)
	assert.Contains(t, rec.Body.String(), "Azure AD")
}

func TestAuthPageHandlers_ErrorPage(t *testing.T) {
	h := &AuthPageHandlers{Renderer: newTestRenderer(t)}

	rec := servePage(t, h.ErrorPage, "/auth/error?error=AccessDenied")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied. You do not have permission to sign in.")

	rec = servePage(t, h.ErrorPage, "/auth/error")
	assert.Contains(t, rec.Body.String(), "An error occurred during authentication.")
}

func TestAuthPageHandlers_GuestToggle(t *testing.T) {
	h := &AuthPageHandlers{}

	req := httptest.NewRequest(http.MethodPost, "/auth/guest", nil)
	rec := httptest.NewRecorder()
	Visitor(visitorOptionsForTest())(http.HandlerFunc(h.EnterGuest)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/chat", rec.Header().Get("Location"))
	c := cookieByName(rec.Result().Cookies(), domainauth.GuestCookieName)
	require.NotNil(t, c)
	assert.Equal(t, "true", c.Value)
	assert.Equal(t, 86400, c.MaxAge)

	req = httptest.NewRequest(http.MethodPost, "/auth/guest/exit", nil)
	req.AddCookie(guestCookie)
	rec = httptest.NewRecorder()
	Visitor(visitorOptionsForTest())(http.HandlerFunc(h.ExitGuest)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	c = cookieByName(rec.Result().Cookies(), domainauth.GuestCookieName)
	require.NotNil(t, c)
	assert.Negative(t, c.MaxAge)
}

func TestTemplateRenderer_UnknownPage(t *testing.T) {
	tr := newTestRenderer(t)
	assert.True(t, tr.Has(PageChat))
	assert.False(t, tr.Has("admin"))
	err := tr.Render(httptest.NewRecorder(), http.StatusOK, "admin", nil)
	require.Error(t, err)
}
