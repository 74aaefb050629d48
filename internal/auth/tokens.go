// internal/auth/tokens.go
//
// HS256 token signing and verification.
//
// Context
// -------
// Tokens issues and checks short-lived bearer tokens carrying registered
// claims only (subject, issuer, issued-at, expiry).  Deciding who may hold
// a token, and what it grants, is left to the callers.
//
// Errors are classified: library failures are apperr.KindJWT with the
// library's message intact; a Tokens without key material fails with
// apperr.ErrToken.
//
// Notes
// -----
//   - Only HS256 is accepted on verification, which rules out "alg: none"
//     and key-confusion tokens.
//   - Oxford commas, two spaces after periods.

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/config"
)

// Tokens is safe for concurrent use.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a signer / verifier from the auth section.
func NewTokens(cfg config.Auth) *Tokens {
	return &Tokens{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Sign returns a compact JWT for subject, valid for the configured TTL.
func (t *Tokens) Sign(subject string) (string, error) {
	if len(t.secret) == 0 {
		return "", apperr.ErrToken
	}

	now := t.now()
	claims := &jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", apperr.JWT(err)
	}
	return signed, nil
}

// Verify parses raw, checks signature, issuer, and expiry, and returns
// the claims.
func (t *Tokens) Verify(raw string) (*jwt.RegisteredClaims, error) {
	if len(t.secret) == 0 {
		return nil, apperr.ErrToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, apperr.JWT(err)
	}
	return claims, nil
}
