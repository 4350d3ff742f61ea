package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redisadapter "github.com/heiraid/heiraid-api/internal/adapters/redis"
	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/mocks"
	"github.com/heiraid/heiraid-api/internal/testutil"
)

func withDecision(outcome domainauth.Outcome, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := domainauth.Decision{Outcome: outcome}
		if outcome == domainauth.OutcomeAuthenticated {
			d.Session = &domainauth.Session{Subject: "u-1", Role: domainauth.RoleClient}
		}
		h.ServeHTTP(w, r.WithContext(SetDecisionInContext(r.Context(), d)))
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestGuestQuota_LimitsGuestsPerAddress(t *testing.T) {
	client, _ := testutil.SetupMiniRedis(t)
	quota := redisadapter.NewGuestQuota(client)
	h := withDecision(domainauth.OutcomeGuest, GuestQuota(QuotaOptions{
		Quota: quota, Limit: 2, Window: time.Hour, Logger: discardLogger(),
	})(okHandler()))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("198.51.100.1:1000"))
	assert.Equal(t, http.StatusOK, call("198.51.100.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("198.51.100.1:1002"))
	assert.Equal(t, http.StatusOK, call("198.51.100.2:1000"), "other addresses have their own budget")
}

func TestGuestQuota_ForwardedForCannotResetBudget(t *testing.T) {
	client, _ := testutil.SetupMiniRedis(t)
	h := withDecision(domainauth.OutcomeGuest, GuestQuota(QuotaOptions{
		Quota: redisadapter.NewGuestQuota(client), Limit: 1, Window: time.Hour, Logger: discardLogger(),
	})(okHandler()))

	call := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
		req.RemoteAddr = "198.51.100.1:1000"
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call(""))
	assert.Equal(t, http.StatusTooManyRequests, call(""))
	for _, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		assert.Equal(t, http.StatusTooManyRequests, call(xff), xff)
	}
}

func TestGuestQuota_TrustedProxyKeysByForwardedClient(t *testing.T) {
	client, _ := testutil.SetupMiniRedis(t)
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	h := withDecision(domainauth.OutcomeGuest, GuestQuota(QuotaOptions{
		Quota: redisadapter.NewGuestQuota(client), Limit: 1, Window: time.Hour,
		TrustedProxies: trusted, Logger: discardLogger(),
	})(okHandler()))

	call := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
		req.RemoteAddr = "10.0.0.5:443"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("9.9.9.9, 203.0.113.1"), "prepended hops are ignored")
	assert.Equal(t, http.StatusOK, call("203.0.113.2"))
}

func TestGuestQuota_LimitBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	quota := mocks.NewMockGuestQuota(ctrl)
	quota.EXPECT().Allow(gomock.Any(), "192.0.2.1", 1, time.Hour).Return(false, nil)

	h := withDecision(domainauth.OutcomeGuest, GuestQuota(QuotaOptions{Quota: quota, Limit: 1, Window: time.Hour})(okHandler()))
	req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Guest usage limit reached. Please sign in to continue."}`, rec.Body.String())
}

func TestGuestQuota_SignedInNotMetered(t *testing.T) {
	ctrl := gomock.NewController(t)
	quota := mocks.NewMockGuestQuota(ctrl) // no calls expected

	h := withDecision(domainauth.OutcomeAuthenticated, GuestQuota(QuotaOptions{Quota: quota, Limit: 1})(okHandler()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/query", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuestQuota_CounterFailureLetsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	quota := mocks.NewMockGuestQuota(ctrl)
	quota.EXPECT().Allow(gomock.Any(), gomock.Any(), 3, gomock.Any()).Return(false, errors.New("redis down"))

	h := withDecision(domainauth.OutcomeGuest, GuestQuota(QuotaOptions{Quota: quota, Limit: 3, Logger: discardLogger()})(okHandler()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/query", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuestQuota_DisabledWithoutLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	quota := mocks.NewMockGuestQuota(ctrl)

	h := withDecision(domainauth.OutcomeGuest, GuestQuota(QuotaOptions{Quota: quota})(okHandler()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/query", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
