package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coursehub/course-service/internal/auth"
	"github.com/coursehub/course-service/internal/domain"
	"github.com/coursehub/course-service/internal/events"
	"github.com/coursehub/course-service/internal/repository"
	"github.com/coursehub/course-service/internal/worker"
	apperrors "github.com/coursehub/course-service/pkg/util"
)

// UserService exposes guard-gated access to user records. It composes the
// guard and the hashing pool instead of inheriting auth behavior.
type UserService struct {
	users      repository.UserRepository
	guard      *auth.Guard
	hashes     *worker.HashPool
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, guard *auth.Guard, hashes *worker.HashPool, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		guard:      guard,
		hashes:     hashes,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// UserUpdate carries the mutable fields of a user record.
type UserUpdate struct {
	Password *string
}

// GetUser returns the record when the caller is authorized to see it.
// A missing record is NotFound; an unauthorized caller is PermissionDenied.
// The two outcomes never masquerade as each other.
func (s *UserService) GetUser(ctx context.Context, caller domain.Identity, userID string) (domain.Identity, error) {
	target, err := s.lookup(ctx, userID)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.guard.Authorize(caller, target.Email); err != nil {
		return domain.Identity{}, err
	}
	return domain.IdentityOf(target), nil
}

// UpdateUser applies the update when the caller is authorized.
func (s *UserService) UpdateUser(ctx context.Context, caller domain.Identity, userID string, update UserUpdate) (domain.Identity, error) {
	target, err := s.lookup(ctx, userID)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.guard.Authorize(caller, target.Email); err != nil {
		return domain.Identity{}, err
	}

	passwordChanged := false
	if update.Password != nil {
		hash, err := s.hashes.Hash(ctx, *update.Password)
		if err != nil {
			return domain.Identity{}, apperrors.NewHashingError(err)
		}
		target.PasswordHash = hash
		passwordChanged = true
	}

	if err := s.users.Update(ctx, target); err != nil {
		if repository.IsNotFound(err) {
			return domain.Identity{}, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return domain.Identity{}, err
	}

	s.logger.Info("user updated", zap.String("email", target.Email), zap.Bool("password_changed", passwordChanged))
	s.publish(ctx, events.EventUserUpdated, target, events.UserUpdatedPayload{
		PasswordChanged: passwordChanged,
		ActorEmail:      caller.Email,
	})
	return domain.IdentityOf(target), nil
}

// DeleteUser removes the record when the caller is authorized.
func (s *UserService) DeleteUser(ctx context.Context, caller domain.Identity, userID string) error {
	target, err := s.lookup(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(caller, target.Email); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, target.ID); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return err
	}

	s.logger.Info("user deleted", zap.String("email", target.Email))
	s.publish(ctx, events.EventUserDeleted, target, events.UserDeletedPayload{ActorEmail: caller.Email})
	return nil
}

func (s *UserService) lookup(ctx context.Context, userID string) (*domain.User, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	return target, nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, user *domain.User, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    user.ID,
		Email:     user.Email,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
