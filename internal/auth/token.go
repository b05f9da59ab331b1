package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired reports a well-signed token whose expiry lies in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed covers everything else: unparseable structure, wrong
	// secret, tampered payload, unexpected algorithm. The cases are deliberately
	// indistinguishable.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims is the verified payload of a token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Codec signs and verifies compact, self-contained, time-bounded tokens.
// It holds only immutable configuration, so Verify is pure and needs no I/O.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	parser *jwt.Parser
}

// NewCodec builds a codec for the given symmetric secret and HMAC algorithm
// name (HS256, HS384 or HS512).
func NewCodec(secret, algorithm string) (*Codec, error) {
	method := jwt.GetSigningMethod(strings.ToUpper(algorithm))
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("algorithm %q is not symmetric", algorithm)
	}
	return &Codec{
		secret: []byte(secret),
		method: method,
		// Expiry is validated by hand in Verify: exp strictly in the past is
		// rejected, exp equal to now is still accepted.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Issue signs a token carrying the subject and an absolute expiry of now+ttl.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks the signature first, then the expiry. No claim is trusted
// before the signature passes.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	var registered jwt.RegisteredClaims
	parsed, err := c.parser.ParseWithClaims(tokenStr, &registered, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	if registered.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}
	if registered.ExpiresAt.Time.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	claims := &Claims{
		Subject:   registered.Subject,
		ExpiresAt: registered.ExpiresAt.Time,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, nil
}
