package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coursehub/course-service/internal/auth"
	"github.com/coursehub/course-service/internal/config"
	"github.com/coursehub/course-service/internal/domain"
	"github.com/coursehub/course-service/internal/events"
	"github.com/coursehub/course-service/internal/repository"
	"github.com/coursehub/course-service/internal/worker"
	apperrors "github.com/coursehub/course-service/pkg/util"
)

// AuthService coordinates registration, login, token issuance and identity
// resolution. It holds only immutable configuration after construction.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	hashes     *worker.HashPool
	codec      *auth.Codec
	throttle   *auth.LoginThrottle
	dispatcher events.Dispatcher
	logger     *zap.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	dummyHash  string
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	HashPool          *worker.HashPool
	Codec             *auth.Codec
	Throttle          *auth.LoginThrottle
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		hashes:     deps.HashPool,
		codec:      deps.Codec,
		throttle:   deps.Throttle,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		accessTTL:  cfg.AccessTokenTTL(),
		refreshTTL: cfg.RefreshTokenTTL(),
		resetTTL:   cfg.PasswordResetTTL(),
	}
	// Burned on lookups of unknown emails so that path costs a bcrypt compare
	// too and timing does not reveal whether the email is registered.
	if dummy, err := deps.HashPool.Hash(context.Background(), uuid.NewString()); err == nil {
		s.dummyHash = dummy
	}
	return s
}

// Register creates a new account. Email uniqueness is enforced by the storage
// constraint; a conflict surfaces as AlreadyExists.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.Identity, error) {
	hash, err := s.hashes.Hash(ctx, password)
	if err != nil {
		return domain.Identity{}, apperrors.NewHashingError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		IsVerified:   false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.Identity{}, apperrors.NewAlreadyExists("user already exists")
		}
		return domain.Identity{}, err
	}

	s.logger.Info("user registered", zap.String("email", user.Email))
	s.publish(ctx, events.EventUserRegistered, user.ID, user.Email, nil)
	return domain.IdentityOf(user), nil
}

// Authenticate verifies credentials. Unknown email, wrong password and
// deactivated account all yield the identical InvalidCredentials error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (domain.Identity, error) {
	if err := s.throttle.Allow(ctx, email); err != nil {
		return domain.Identity{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			_, _ = s.hashes.Verify(ctx, password, s.dummyHash)
			return s.failLogin(ctx, email)
		}
		return domain.Identity{}, err
	}

	ok, err := s.hashes.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return domain.Identity{}, apperrors.NewHashingError(err)
	}
	if !ok || !user.IsActive {
		return s.failLogin(ctx, email)
	}

	s.throttle.Reset(ctx, email)
	s.publish(ctx, events.EventUserLoggedIn, user.ID, user.Email, nil)
	return domain.IdentityOf(user), nil
}

func (s *AuthService) failLogin(ctx context.Context, email string) (domain.Identity, error) {
	s.throttle.RecordFailure(ctx, email)
	s.logger.Warn("authentication failed", zap.String("email", email))
	return domain.Identity{}, apperrors.NewInvalidCredentials()
}

// IssueTokenPair mints an access/refresh pair carrying the same subject.
func (s *AuthService) IssueTokenPair(identity domain.Identity) (domain.TokenPair, error) {
	access, _, err := s.codec.Issue(identity.Email, s.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, _, err := s.codec.Issue(identity.Email, s.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.BearerTokenType,
	}, nil
}

// ResolveIdentity maps a token back to the stored account it authorizes.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := s.verify(token)
	if err != nil {
		return domain.Identity{}, err
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if repository.IsNotFound(err) {
			// Token outlived its account.
			return domain.Identity{}, apperrors.NewUnknownPrincipal()
		}
		return domain.Identity{}, err
	}
	return domain.IdentityOf(user), nil
}

// Refresh verifies a refresh token and mints a fresh access token. The
// refresh token is returned unchanged; pairs are not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.verify(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	access, _, err := s.codec.Issue(claims.Subject, s.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    domain.BearerTokenType,
	}, nil
}

// verify translates codec failures into the wire-level error taxonomy and
// rejects tokens whose subject claim is absent.
func (s *AuthService) verify(token string) (*auth.Claims, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		switch err {
		case auth.ErrTokenExpired:
			return nil, apperrors.NewTokenExpired()
		default:
			return nil, apperrors.NewTokenMalformed()
		}
	}
	if claims.Subject == "" {
		return nil, apperrors.NewInvalidToken("subject claim missing")
	}
	return claims, nil
}

// RequestPasswordReset stores a single-use reset token for the account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordReset, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, err
	}

	reset := &domain.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventPasswordResetRequested, user.ID, user.Email, nil)
	return reset, nil
}

// ConfirmPasswordReset validates the reset token and installs a new hash.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	reset, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("reset token", nil)
		}
		return err
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return apperrors.NewValidationError("reset token expired or already used", nil)
	}

	user, err := s.users.GetByID(ctx, reset.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewUnknownPrincipal()
		}
		return err
	}

	hash, err := s.hashes.Hash(ctx, newPassword)
	if err != nil {
		return apperrors.NewHashingError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordResetCompleted, user.ID, user.Email, nil)
	return s.resets.MarkUsed(ctx, reset.ID)
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID, email string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Email:     email,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
