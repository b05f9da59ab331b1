package service_test

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursehub/course-service/internal/auth"
	"github.com/coursehub/course-service/internal/config"
	"github.com/coursehub/course-service/internal/events"
	"github.com/coursehub/course-service/internal/service"
	"github.com/coursehub/course-service/internal/worker"
	apperrors "github.com/coursehub/course-service/pkg/util"
)

const testSecret = "test-secret"

type authFixture struct {
	svc    *service.AuthService
	users  *fakeUserRepo
	resets *fakeResetRepo
	codec  *auth.Codec
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	codec, err := auth.NewCodec(testSecret, "HS256")
	require.NoError(t, err)

	users := newFakeUserRepo()
	resets := newFakeResetRepo()
	cfg := config.AuthConfig{
		AccessTokenTTLMinutes:   15,
		RefreshTokenTTLDays:     30,
		PasswordResetTTLMinutes: 30,
	}

	svc := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: resets,
		HashPool:          worker.NewHashPool(auth.NewHasher(4), 2),
		Codec:             codec,
		Dispatcher:        events.NewInMemoryDispatcher(),
		Logger:            zap.NewNop(),
	})
	return &authFixture{svc: svc, users: users, resets: resets, codec: codec}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestRegister(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	identity, err := fix.svc.Register(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.NotEmpty(t, identity.ID)
	assert.True(t, identity.IsActive)
	assert.False(t, identity.IsVerified)

	stored, err := fix.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "password1")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	_, err := fix.svc.Register(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	_, err = fix.svc.Register(ctx, "a@x.com", "password2")
	assert.Equal(t, "ALREADY_EXISTS", errCode(t, err))

	// The first registration is still authenticatable.
	_, err = fix.svc.Authenticate(ctx, "a@x.com", "password1")
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	_, err := fix.svc.Register(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	identity, err := fix.svc.Authenticate(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Email)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	_, err := fix.svc.Register(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	_, wrongPassword := fix.svc.Authenticate(ctx, "a@x.com", "wrong-password")
	_, unknownEmail := fix.svc.Authenticate(ctx, "nosuchuser@x.com", "anything")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, apperrors.ToDomainError(wrongPassword).Code, apperrors.ToDomainError(unknownEmail).Code)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(wrongPassword).Code)
}

func TestAuthenticateDeactivatedAccount(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	_, err := fix.svc.Register(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	user, err := fix.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, fix.users.Update(ctx, user))

	_, err = fix.svc.Authenticate(ctx, "a@x.com", "password1")
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
}

func TestIssueTokenPairSharesSubject(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	identity, err := fix.svc.Register(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	pair, err := fix.svc.IssueTokenPair(identity)
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	access, err := fix.codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := fix.codec.Verify(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", access.Subject)
	assert.Equal(t, "a@x.com", refresh.Subject)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt))

	_, err = fix.svc.ResolveIdentity(ctx, pair.AccessToken)
	assert.NoError(t, err)
}

func TestResolveIdentityFailures(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	t.Run("expired token", func(t *testing.T) {
		token, _, err := fix.codec.Issue("a@x.com", -time.Minute)
		require.NoError(t, err)
		_, err = fix.svc.ResolveIdentity(ctx, token)
		assert.Equal(t, "TOKEN_EXPIRED", errCode(t, err))
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := fix.svc.ResolveIdentity(ctx, "garbage")
		assert.Equal(t, "TOKEN_MALFORMED", errCode(t, err))
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := auth.NewCodec("other-secret", "HS256")
		require.NoError(t, err)
		token, _, err := other.Issue("a@x.com", time.Minute)
		require.NoError(t, err)
		_, err = fix.svc.ResolveIdentity(ctx, token)
		assert.Equal(t, "TOKEN_MALFORMED", errCode(t, err))
	})

	t.Run("missing subject claim", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		})
		token, err := raw.SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = fix.svc.ResolveIdentity(ctx, token)
		assert.Equal(t, "INVALID_TOKEN", errCode(t, err))
	})

	t.Run("deleted principal", func(t *testing.T) {
		token, _, err := fix.codec.Issue("gone@x.com", time.Minute)
		require.NoError(t, err)
		_, err = fix.svc.ResolveIdentity(ctx, token)
		assert.Equal(t, "UNKNOWN_PRINCIPAL", errCode(t, err))
	})
}

func TestRefreshReusesRefreshToken(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	identity, err := fix.svc.Register(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	pair, err := fix.svc.IssueTokenPair(identity)
	require.NoError(t, err)

	refreshed, err := fix.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, "bearer", refreshed.TokenType)

	oldAccess, err := fix.codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	newAccess, err := fix.codec.Verify(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", newAccess.Subject)
	assert.False(t, newAccess.ExpiresAt.Before(oldAccess.ExpiresAt))
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	expired, _, err := fix.codec.Issue("a@x.com", -time.Minute)
	require.NoError(t, err)
	_, err = fix.svc.Refresh(ctx, expired)
	assert.Equal(t, "TOKEN_EXPIRED", errCode(t, err))

	_, err = fix.svc.Refresh(ctx, "garbage")
	assert.Equal(t, "TOKEN_MALFORMED", errCode(t, err))
}

func TestPasswordResetFlow(t *testing.T) {
	fix := newAuthFixture(t)
	ctx := context.Background()

	_, err := fix.svc.Register(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	reset, err := fix.svc.RequestPasswordReset(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, reset.Token)

	require.NoError(t, fix.svc.ConfirmPasswordReset(ctx, reset.Token, "password2"))

	_, err = fix.svc.Authenticate(ctx, "a@x.com", "password1")
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
	_, err = fix.svc.Authenticate(ctx, "a@x.com", "password2")
	assert.NoError(t, err)

	// The token is single-use.
	err = fix.svc.ConfirmPasswordReset(ctx, reset.Token, "password3")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	fix := newAuthFixture(t)

	_, err := fix.svc.RequestPasswordReset(context.Background(), "nosuchuser@x.com")
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}
