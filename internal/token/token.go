// Package token mints the single-use confirmation tokens that accompany
// pending order requests. A token is an HMAC-signed JWT bound to one batch
// id, so a token for one order can never confirm another.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// audience marks what a token is good for; anything else presented at the
// confirmation step is rejected.
const audience = "order-confirmation"

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Issue(batchID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   batchID.String(),
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing confirmation token: %w", err)
	}

	return signed, nil
}

func (i *Issuer) Verify(token string, batchID uuid.UUID) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return i.secret, nil
	}, jwt.WithAudience(audience))
	if err != nil {
		return fmt.Errorf("parsing confirmation token: %w", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != batchID.String() {
		return fmt.Errorf("confirmation token was issued for a different batch")
	}

	return nil
}
