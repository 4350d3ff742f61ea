package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/service"
)

func serveAuth(h http.HandlerFunc, pattern string, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle(pattern, h)
	rec := httptest.NewRecorder()
	Visitor(visitorOptionsForTest())(mux).ServeHTTP(rec, req)
	return rec
}

func TestAuthHandlers_SignIn_SetsFlowCookies(t *testing.T) {
	var gotRedirect, gotProvider string
	svc := &stubAuth{beginFunc: func(_ context.Context, providerID, redirectURL string) (*service.BeginLoginResult, error) {
		gotProvider, gotRedirect = providerID, redirectURL
		return &service.BeginLoginResult{AuthURL: "https://idp.example/authorize", State: "st", Nonce: "nn"}, nil
	}}
	h := &AuthHandlers{Svc: svc, Logger: discardLogger()}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/signin/azure-ad?callbackUrl=%2Fmap", nil)
	rec := serveAuth(h.SignIn, "GET /api/auth/signin/{provider}", req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://idp.example/authorize", rec.Header().Get("Location"))
	assert.Equal(t, "azure-ad", gotProvider)
	assert.Equal(t, "/map", gotRedirect)

	cookies := rec.Result().Cookies()
	require.NotNil(t, cookieByName(cookies, cookieOAuthState))
	assert.Equal(t, "st", cookieByName(cookies, cookieOAuthState).Value)
	assert.Equal(t, "nn", cookieByName(cookies, cookieOAuthNonce).Value)
	assert.Equal(t, "/map", cookieByName(cookies, cookiePostLoginPath).Value)
	assert.True(t, cookieByName(cookies, cookieOAuthState).HttpOnly)
}

func TestAuthHandlers_SignIn_OpenRedirectRejected(t *testing.T) {
	var gotRedirect string
	svc := &stubAuth{beginFunc: func(_ context.Context, _, redirectURL string) (*service.BeginLoginResult, error) {
		gotRedirect = redirectURL
		return &service.BeginLoginResult{AuthURL: "https://idp.example/authorize"}, nil
	}}
	h := &AuthHandlers{Svc: svc}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/signin/azure-ad?callbackUrl=https%3A%2F%2Fevil.example", nil)
	serveAuth(h.SignIn, "GET /api/auth/signin/{provider}", req)
	assert.Equal(t, "/", gotRedirect)
}

func TestAuthHandlers_SignIn_NotConfigured(t *testing.T) {
	svc := &stubAuth{beginFunc: func(context.Context, string, string) (*service.BeginLoginResult, error) {
		return nil, service.ErrProviderNotConfigured
	}}
	h := &AuthHandlers{Svc: svc, Logger: discardLogger()}
	rec := serveAuth(h.SignIn, "GET /api/auth/signin/{provider}", httptest.NewRequest(http.MethodGet, "/api/auth/signin/azure-ad", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/error?error=Configuration", rec.Header().Get("Location"))
}

func callbackRequest(query string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback/azure-ad?"+query, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestAuthHandlers_Callback_Success(t *testing.T) {
	var got service.CompleteLoginInput
	svc := &stubAuth{completeFunc: func(_ context.Context, in service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
		got = in
		return &service.CompleteLoginResult{
			Session: domainauth.Session{Subject: "u-1", Role: domainauth.RoleAdmin, ExpiresAt: time.Now().Add(2 * time.Hour)},
			Token:   "signed-token",
		}, nil
	}}
	h := &AuthHandlers{Svc: svc, Logger: discardLogger()}

	req := callbackRequest("code=c0de&state=st",
		&http.Cookie{Name: cookieOAuthState, Value: "st"},
		&http.Cookie{Name: cookieOAuthNonce, Value: "nn"},
		&http.Cookie{Name: cookiePostLoginPath, Value: "/documents"},
		&http.Cookie{Name: domainauth.GuestCookieName, Value: domainauth.GuestCookieValue},
	)
	rec := serveAuth(h.Callback, "GET /api/auth/callback/{provider}", req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/documents", rec.Header().Get("Location"))
	assert.Equal(t, service.CompleteLoginInput{ProviderID: "azure-ad", Code: "c0de", State: "st", Nonce: "nn"}, got)

	cookies := rec.Result().Cookies()
	sess := cookieByName(cookies, domainauth.SessionCookieName)
	require.NotNil(t, sess)
	assert.Equal(t, "signed-token", sess.Value)
	assert.True(t, sess.HttpOnly)
	assert.Greater(t, sess.MaxAge, 3600)

	guest := cookieByName(cookies, domainauth.GuestCookieName)
	require.NotNil(t, guest, "signing in leaves guest mode")
	assert.Negative(t, guest.MaxAge)
}

func TestAuthHandlers_Callback_Failures(t *testing.T) {
	stateCookie := &http.Cookie{Name: cookieOAuthState, Value: "st"}
	nonceCookie := &http.Cookie{Name: cookieOAuthNonce, Value: "nn"}

	tests := []struct {
		name     string
		req      *http.Request
		complete error
		want     string
	}{
		{"idp error", callbackRequest("error=access_denied"), nil, AuthErrAccessDenied},
		{"missing state cookie", callbackRequest("code=c&state=st", nonceCookie), nil, AuthErrVerification},
		{"state mismatch", callbackRequest("code=c&state=other", stateCookie, nonceCookie), nil, AuthErrVerification},
		{"missing nonce", callbackRequest("code=c&state=st", stateCookie), nil, AuthErrVerification},
		{"exchange failed", callbackRequest("code=c&state=st", stateCookie, nonceCookie), errors.New("bad code"), AuthErrDefault},
		{"no secret", callbackRequest("code=c&state=st", stateCookie, nonceCookie), domainauth.ErrSecretMissing, AuthErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAuth{completeFunc: func(context.Context, service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
				if tt.complete != nil {
					return nil, tt.complete
				}
				return &service.CompleteLoginResult{Token: "t"}, nil
			}}
			h := &AuthHandlers{Svc: svc, Logger: discardLogger()}
			rec := serveAuth(h.Callback, "GET /api/auth/callback/{provider}", tt.req)

			require.Equal(t, http.StatusFound, rec.Code)
			loc, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "/auth/error", loc.Path)
			assert.Equal(t, tt.want, loc.Query().Get("error"))
			assert.Nil(t, cookieByName(rec.Result().Cookies(), domainauth.SessionCookieName))
		})
	}
}

func TestAuthHandlers_SignOut(t *testing.T) {
	h := &AuthHandlers{Svc: &stubAuth{}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	req.AddCookie(&http.Cookie{Name: domainauth.SessionCookieName, Value: "signed-token"})
	rec := serveAuth(h.SignOut, "POST /api/auth/signout", req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	sess := cookieByName(rec.Result().Cookies(), domainauth.SessionCookieName)
	require.NotNil(t, sess)
	assert.Empty(t, sess.Value)
	assert.Negative(t, sess.MaxAge)
}

func TestAuthHandlers_Session(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		h := &AuthHandlers{Svc: &stubAuth{}}
		rec := serveAuth(h.Session, "GET /api/auth/session", httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{}`, rec.Body.String())
	})

	t.Run("signed in", func(t *testing.T) {
		h := &AuthHandlers{Svc: &stubAuth{}}
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: domainauth.SessionCookieName, Value: "signed-token"})
		rec := serveAuth(h.Session, "GET /api/auth/session", req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"user": {"id":"u-1","name":"Ada","email":"ada@example.com","role":"client"},
			"expires": "2030-01-01T00:00:00Z"
		}`, rec.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		h := &AuthHandlers{Svc: &stubAuth{getSessionErr: domainauth.ErrTokenInvalid}, Logger: discardLogger()}
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: domainauth.SessionCookieName, Value: "forged"})
		rec := serveAuth(h.Session, "GET /api/auth/session", req)
		assert.JSONEq(t, `{}`, rec.Body.String())
	})
}

func TestAuthHandlers_Providers(t *testing.T) {
	h := &AuthHandlers{Svc: &stubAuth{providers: []service.ProviderInfo{{ID: "azure-ad", Name: "Azure AD", Type: "oidc"}}}}
	rec := serveAuth(h.Providers, "GET /api/auth/providers", httptest.NewRequest(http.MethodGet, "/api/auth/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"azure-ad":{
		"id":"azure-ad","name":"Azure AD","type":"oidc",
		"signinUrl":"/api/auth/signin/azure-ad","callbackUrl":"/api/auth/callback/azure-ad"
	}}`, rec.Body.String())
}

func TestAuthErrorMessage(t *testing.T) {
	assert.Equal(t, "There is a problem with the server configuration.", AuthErrorMessage(AuthErrConfiguration))
	assert.Equal(t, "Access denied. You do not have permission to sign in.", AuthErrorMessage(AuthErrAccessDenied))
	assert.Equal(t, "The verification token has expired or has already been used.", AuthErrorMessage(AuthErrVerification))
	assert.Equal(t, "An error occurred during authentication.", AuthErrorMessage("Whatever"))
}
