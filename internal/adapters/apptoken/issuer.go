// Package apptoken issues the HS256 access tokens handed to the browser after login.
// A token only names a session; holders are always checked against the session store.
package apptoken

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

const issuerName = "careconnect"

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid access token")

// Claims is the JWT payload.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// IssuerOptions configures an Issuer.
type IssuerOptions struct {
	Secret string
	// TTL caps token lifetime; the session expiry wins when earlier. Default 1h.
	TTL time.Duration
	Now func() time.Time
}

// Issuer signs and verifies app access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.TokenIssuer = (*Issuer)(nil)

// NewIssuer builds an Issuer. The secret must be at least 32 bytes.
func NewIssuer(opts IssuerOptions) (*Issuer, error) {
	if len(opts.Secret) < 32 {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(opts.Secret), ttl: ttl, now: now}, nil
}

// Issue signs a token for sess.
func (i *Issuer) Issue(sess domainauth.Session) (string, error) {
	if sess.ID == "" {
		return "", errors.New("session ID is required")
	}
	now := i.now()
	exp := now.Add(i.ttl)
	if !sess.ExpiresAt.IsZero() && sess.ExpiresAt.Before(exp) {
		exp = sess.ExpiresAt
	}
	claims := Claims{
		Email:     sess.Email,
		Role:      string(sess.Role),
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry and returns the carried claims.
func (i *Issuer) Parse(token string) (ports.TokenClaims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.SessionID == "" {
		return ports.TokenClaims{}, fmt.Errorf("%w: missing sid", ErrInvalidToken)
	}
	out := ports.TokenClaims{
		Subject:   c.Subject,
		Email:     c.Email,
		Role:      domainauth.Role(c.Role),
		SessionID: c.SessionID,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
