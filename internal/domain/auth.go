package domain

import "time"

// TokenPair is issued at login: a short-lived access token and a long-lived
// refresh token, both stateless and carrying the same subject.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// BearerTokenType is the only token type the service issues.
const BearerTokenType = "bearer"

// PasswordReset is a stored single-use reset token.
type PasswordReset struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
