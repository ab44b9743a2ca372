// Package auth issues and verifies the bearer tokens protecting
// mutating API routes. Tokens are HS256 JWTs signed with the profile's
// JWT secret; a missing secret disables authentication entirely, which
// the profile only tolerates on a loopback bind.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// Issuer identifies tokens minted by this daemon.
	Issuer = "memwallet"
	// AccessTokenAudience scopes tokens to the wallet API.
	AccessTokenAudience = "wallet.access-token"
	// DefaultAccessTokenDuration is used when the token command does not
	// specify a lifetime.
	DefaultAccessTokenDuration = 30 * 24 * time.Hour
)

// ClaimsMessage is the payload carried by wallet access tokens. The
// subject holds the persona the token was minted for.
type ClaimsMessage struct {
	jwt.RegisteredClaims
}

// GenerateAccessToken mints a signed token for the persona. A zero
// expiration produces a non-expiring token.
func GenerateAccessToken(persona string, expiresAt time.Time, secret []byte) (string, error) {
	claims := &ClaimsMessage{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   Issuer,
			Audience: jwt.ClaimStrings{AccessTokenAudience},
			Subject:  persona,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = "v1"
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}
	return signed, nil
}

// Authenticate verifies an Authorization header value and returns the
// token claims. The scheme must be Bearer and the signature, audience,
// and expiry must all check out.
func Authenticate(authHeader string, secret []byte) (*ClaimsMessage, error) {
	token, err := extractBearerToken(authHeader)
	if err != nil {
		return nil, err
	}
	return verifyAccessToken(token, secret)
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errors.New("authorization header is not a bearer token")
	}
	return token, nil
}

func verifyAccessToken(tokenString string, secret []byte) (*ClaimsMessage, error) {
	claims := &ClaimsMessage{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(AccessTokenAudience),
	)
	if err != nil {
		return nil, errors.Wrap(err, "invalid access token")
	}
	return claims, nil
}
