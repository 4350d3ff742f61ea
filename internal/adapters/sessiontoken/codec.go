// Package sessiontoken signs and verifies the stateless session token with HS256 JWTs.
package sessiontoken

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/ports"
)

var _ ports.TokenCodec = (*Codec)(nil)

const (
	defaultIssuer = "heiraid"
	defaultLeeway = 30 * time.Second
)

// Options configures a Codec.
type Options struct {
	// Secret is the shared signing secret. An empty secret makes every
	// Issue fail and every Verify report ErrSecretMissing.
	Secret string
	// TTL is the lifetime of issued tokens.
	TTL time.Duration
	// Issuer is written to and expected in the iss claim.
	Issuer string
	// Leeway tolerates clock skew when checking exp and nbf.
	Leeway time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Codec implements ports.TokenCodec.
type Codec struct {
	key    []byte
	ttl    time.Duration
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// sessionClaims are the private claims carried next to the registered ones.
type sessionClaims struct {
	Name        string          `json:"name,omitempty"`
	Email       string          `json:"email,omitempty"`
	AccessToken string          `json:"accessToken,omitempty"`
	Role        domainauth.Role `json:"role,omitempty"`
}

// New creates a Codec. The secret is stretched with SHA-256 so any
// non-empty secret yields a full-size HS256 key.
func New(opts Options) *Codec {
	c := &Codec{
		ttl:    opts.TTL,
		issuer: opts.Issuer,
		leeway: opts.Leeway,
		now:    opts.Now,
	}
	if secret := strings.TrimSpace(opts.Secret); secret != "" {
		sum := sha256.Sum256([]byte(secret))
		c.key = sum[:]
	}
	if c.ttl <= 0 {
		c.ttl = domainauth.GuestTTL
	}
	if c.issuer == "" {
		c.issuer = defaultIssuer
	}
	if c.leeway <= 0 {
		c.leeway = defaultLeeway
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// TTL returns the lifetime applied to issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs sess. IssuedAt and ExpiresAt are filled from the codec clock when zero.
func (c *Codec) Issue(sess domainauth.Session) (string, error) {
	if len(c.key) == 0 {
		return "", domainauth.ErrSecretMissing
	}
	if sess.Subject == "" {
		return "", errors.New("session subject is required")
	}

	now := c.now()
	if sess.IssuedAt.IsZero() {
		sess.IssuedAt = now
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = sess.IssuedAt.Add(c.ttl)
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: c.key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("create signer: %w", err)
	}

	std := jwt.Claims{
		Issuer:    c.issuer,
		Subject:   sess.Subject,
		IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
		NotBefore: jwt.NewNumericDate(sess.IssuedAt),
		Expiry:    jwt.NewNumericDate(sess.ExpiresAt),
	}
	priv := sessionClaims{
		Name:        sess.Name,
		Email:       sess.Email,
		AccessToken: sess.AccessToken,
		Role:        sess.Role,
	}

	raw, err := jwt.Signed(signer).Claims(std).Claims(priv).Serialize()
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return raw, nil
}

// Verify checks the signature and validity window of token and returns its session.
// Every failure is one of the classified domainauth errors.
func (c *Codec) Verify(token string) (domainauth.Session, error) {
	if len(c.key) == 0 {
		return domainauth.Session{}, domainauth.ErrSecretMissing
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domainauth.Session{}, domainauth.ErrTokenMissing
	}

	parsed, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("%w: %v", domainauth.ErrTokenInvalid, err)
	}

	var (
		std  jwt.Claims
		priv sessionClaims
	)
	if err := parsed.Claims(c.key, &std, &priv); err != nil {
		return domainauth.Session{}, fmt.Errorf("%w: %v", domainauth.ErrTokenInvalid, err)
	}

	err = std.ValidateWithLeeway(jwt.Expected{Issuer: c.issuer, Time: c.now()}, c.leeway)
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return domainauth.Session{}, domainauth.ErrTokenExpired
	case err != nil:
		return domainauth.Session{}, fmt.Errorf("%w: %v", domainauth.ErrTokenInvalid, err)
	}
	if std.Subject == "" || std.Expiry == nil {
		return domainauth.Session{}, fmt.Errorf("%w: missing sub or exp", domainauth.ErrTokenInvalid)
	}

	sess := domainauth.Session{
		Subject:     std.Subject,
		Name:        priv.Name,
		Email:       priv.Email,
		AccessToken: priv.AccessToken,
		Role:        priv.Role,
		ExpiresAt:   std.Expiry.Time(),
	}
	if std.IssuedAt != nil {
		sess.IssuedAt = std.IssuedAt.Time()
	}
	return sess, nil
}
