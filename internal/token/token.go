// Package token implements the signed bearer-token codec used for stateless
// sessions. Tokens are HMAC-SHA256 signed JWTs carrying the account id, name,
// email and role; there is no expiry claim, so a token stays valid until the
// signing secret changes.
package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aula-lms/aula-lms/internal/shared"
)

// ErrInvalidToken is returned for any token that fails verification: bad
// signature, malformed payload, wrong signing method, or missing claims.
var ErrInvalidToken = errors.New("token: invalid token")

// wireClaims is the JSON payload of a session token. The subject is a
// numeric account id on the wire, which rules out jwt.RegisteredClaims.
type wireClaims struct {
	Sub         int64  `json:"sub"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
}

func (wireClaims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (wireClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (wireClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (wireClaims) GetIssuer() (string, error)                   { return "", nil }
func (c wireClaims) GetSubject() (string, error)                { return c.Email, nil }
func (wireClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// Codec encodes and decodes session tokens with a single shared secret.
type Codec struct {
	secret []byte
}

// NewCodec constructs a Codec. The secret must not be empty.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Encode signs the session claims into a compact token string.
func (c *Codec) Encode(sess shared.Session) (string, error) {
	claims := wireClaims{
		Sub:         sess.AccountID,
		Name:        sess.Name,
		Email:       sess.Email,
		AccountType: string(sess.Role),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies the token signature and structural shape and returns the
// embedded session.
func (c *Codec) Decode(tokenString string) (shared.Session, error) {
	var claims wireClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return shared.Session{}, ErrInvalidToken
	}

	role, err := shared.ParseRole(claims.AccountType)
	if err != nil {
		return shared.Session{}, ErrInvalidToken
	}
	if claims.Sub == 0 || claims.Email == "" {
		return shared.Session{}, ErrInvalidToken
	}

	return shared.Session{
		AccountID: claims.Sub,
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      role,
	}, nil
}
