package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/heiraid/heiraid-api/internal/adapters/redis"
	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/service"
	"github.com/heiraid/heiraid-api/internal/testutil"
)

func newTestRouter(t *testing.T, mutate ...func(*RouterServices)) http.Handler {
	t.Helper()
	svcs := RouterServices{
		Auth:   &stubAuth{providers: []service.ProviderInfo{{ID: "azure-ad", Name: "Azure AD", Type: "oidc"}}},
		Policy: &stubPolicy{},
		Assistant: &stubAssistant{
			askFunc: func(context.Context, service.AskInput) (*service.Answer, error) {
				return &service.Answer{Answer: "ok"}, nil
			},
			outreachFunc: func(context.Context) ([]string, error) { return []string{"1", "2", "3", "4", "5"}, nil },
		},
		Storage:   &stubStorage{containers: []string{"ocga"}},
		Documents: &stubDocuments{},
		Logger:    discardLogger(),
	}
	for _, m := range mutate {
		m(&svcs)
	}
	return NewRouter(svcs)
}

func routerDo(h http.Handler, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "198.51.100.7:1234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)

	rec := routerDo(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = routerDo(h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"HeirAid API is running smoothly."}`, rec.Body.String())
}

func TestRouter_APIRequiresAccess(t *testing.T) {
	h := newTestRouter(t)

	rec := routerDo(h, http.MethodGet, "/api/azure-containers", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/signin?callbackUrl=%2Fapi%2Fazure-containers", rec.Header().Get("Location"))

	rec = routerDo(h, http.MethodGet, "/api/azure-containers", "", guestCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"containers":["ocga"]}`, rec.Body.String())

	rec = routerDo(h, http.MethodGet, "/api/azure-containers", "",
		&http.Cookie{Name: domainauth.SessionCookieName, Value: "good"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_PagesRedirectWithCallback(t *testing.T) {
	h := newTestRouter(t)
	rec := routerDo(h, http.MethodGet, "/map", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/signin?callbackUrl=%2Fmap", rec.Header().Get("Location"))
}

func TestRouter_AuthRoutesArePublic(t *testing.T) {
	h := newTestRouter(t)

	rec := routerDo(h, http.MethodGet, "/api/auth/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"azure-ad"`)

	rec = routerDo(h, http.MethodGet, "/api/auth/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = routerDo(h, http.MethodPost, "/auth/guest", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotNil(t, cookieByName(rec.Result().Cookies(), domainauth.GuestCookieName))
}

func TestRouter_SignOutRequiresPost(t *testing.T) {
	h := newTestRouter(t)
	session := &http.Cookie{Name: domainauth.SessionCookieName, Value: "good"}

	rec := routerDo(h, http.MethodGet, "/api/auth/signout", "", session)
	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
	assert.Nil(t, cookieByName(rec.Result().Cookies(), domainauth.SessionCookieName), "GET must not clear the session")

	rec = routerDo(h, http.MethodPost, "/api/auth/signout", "", session)
	assert.Less(t, rec.Code, http.StatusBadRequest)
	cleared := cookieByName(rec.Result().Cookies(), domainauth.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestRouter_GuestQuotaOnLLMRoutes(t *testing.T) {
	client, _ := testutil.SetupMiniRedis(t)
	h := newTestRouter(t, func(s *RouterServices) {
		s.Quota = redisadapter.NewGuestQuota(client)
		s.GuestLimit = 1
		s.GuestWindow = time.Hour
	})

	rec := routerDo(h, http.MethodPost, "/api/query", `{"query":"q"}`, guestCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = routerDo(h, http.MethodPost, "/api/query", `{"query":"q"}`, guestCookie)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Signed-in callers are not metered.
	rec = routerDo(h, http.MethodPost, "/api/query", `{"query":"q"}`,
		&http.Cookie{Name: domainauth.SessionCookieName, Value: "good"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Non-LLM routes are not metered.
	rec = routerDo(h, http.MethodGet, "/api/validate-storage", "", guestCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_UnknownAPIRouteIsJSON(t *testing.T) {
	h := newTestRouter(t)
	rec := routerDo(h, http.MethodGet, "/api/nope", "", guestCookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestRouter_EmbeddedPages(t *testing.T) {
	h := newTestRouter(t)

	rec := routerDo(h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "HeirAid")

	rec = routerDo(h, http.MethodGet, "/auth/signin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/auth/signin/azure-ad")

	rec = routerDo(h, http.MethodGet, "/chat", "", guestCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Legal Assistant")

	rec = routerDo(h, http.MethodGet, "/static/css/app.css", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
