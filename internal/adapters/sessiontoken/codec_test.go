package sessiontoken

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestCodec_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(Options{Secret: "s3cret", TTL: time.Hour, Now: fixedClock(now)})

	raw, err := c.Issue(domainauth.Session{
		Subject:     "oid-123",
		Name:        "Ada Heir",
		Email:       "ada@example.com",
		AccessToken: "graph-token",
		Role:        domainauth.RoleLegalProfessional,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(raw, "."))

	sess, err := c.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "oid-123", sess.Subject)
	assert.Equal(t, "Ada Heir", sess.Name)
	assert.Equal(t, "ada@example.com", sess.Email)
	assert.Equal(t, "graph-token", sess.AccessToken)
	assert.Equal(t, domainauth.RoleLegalProfessional, sess.Role)
	assert.True(t, sess.IssuedAt.Equal(now))
	assert.True(t, sess.ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestCodec_Verify_Failures(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := New(Options{Secret: "s3cret", TTL: time.Hour, Now: fixedClock(now)})
	valid, err := issuer.Issue(domainauth.Session{Subject: "u1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		codec   *Codec
		token   string
		wantErr error
	}{
		{
			name:    "missing secret",
			codec:   New(Options{Now: fixedClock(now)}),
			token:   valid,
			wantErr: domainauth.ErrSecretMissing,
		},
		{
			name:    "empty token",
			codec:   issuer,
			token:   "  ",
			wantErr: domainauth.ErrTokenMissing,
		},
		{
			name:    "malformed",
			codec:   issuer,
			token:   "not-a-jwt",
			wantErr: domainauth.ErrTokenInvalid,
		},
		{
			name:    "wrong secret",
			codec:   New(Options{Secret: "other", Now: fixedClock(now)}),
			token:   valid,
			wantErr: domainauth.ErrTokenInvalid,
		},
		{
			name:    "expired",
			codec:   New(Options{Secret: "s3cret", Now: fixedClock(now.Add(2 * time.Hour))}),
			token:   valid,
			wantErr: domainauth.ErrTokenExpired,
		},
		{
			name:    "different issuer",
			codec:   New(Options{Secret: "s3cret", Issuer: "someone-else", Now: fixedClock(now)}),
			token:   valid,
			wantErr: domainauth.ErrTokenInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.codec.Verify(tt.token)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domainauth.IsVerificationError(err))
		})
	}
}

func TestCodec_Verify_WithinLeeway(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := New(Options{Secret: "s3cret", TTL: time.Minute, Now: fixedClock(now)})
	raw, err := issuer.Issue(domainauth.Session{Subject: "u1"})
	require.NoError(t, err)

	late := New(Options{Secret: "s3cret", Leeway: 30 * time.Second, Now: fixedClock(now.Add(time.Minute + 10*time.Second))})
	_, err = late.Verify(raw)
	assert.NoError(t, err)
}

func TestCodec_Issue_Errors(t *testing.T) {
	_, err := New(Options{}).Issue(domainauth.Session{Subject: "u1"})
	require.ErrorIs(t, err, domainauth.ErrSecretMissing)

	_, err = New(Options{Secret: "x"}).Issue(domainauth.Session{})
	require.Error(t, err)
}

func TestCodec_Defaults(t *testing.T) {
	c := New(Options{Secret: "x"})
	assert.Equal(t, 24*time.Hour, c.TTL())
}
