package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/coursehub/course-service/internal/config"
	"github.com/coursehub/course-service/internal/domain"
	"github.com/coursehub/course-service/internal/repository"
	"github.com/coursehub/course-service/internal/worker"
)

// SeedService creates the bootstrap admin/manager accounts at startup when
// they are configured and missing.
type SeedService struct {
	users  repository.UserRepository
	hashes *worker.HashPool
	logger *zap.Logger
}

// NewSeedService builds the service.
func NewSeedService(users repository.UserRepository, hashes *worker.HashPool, logger *zap.Logger) *SeedService {
	return &SeedService{users: users, hashes: hashes, logger: logger}
}

// Run seeds all configured accounts. Existing accounts are left untouched.
func (s *SeedService) Run(ctx context.Context, cfg config.SeedConfig) error {
	if err := s.ensure(ctx, cfg.AdminEmail, cfg.AdminPassword, domain.RoleAdmin); err != nil {
		return err
	}
	return s.ensure(ctx, cfg.ManagerEmail, cfg.ManagerPassword, domain.RoleManager)
}

func (s *SeedService) ensure(ctx context.Context, email, password string, role domain.Role) error {
	if email == "" || password == "" {
		return nil
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !repository.IsNotFound(err) {
		return err
	}

	hash, err := s.hashes.Hash(ctx, password)
	if err != nil {
		return err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race against a concurrent seed; the account exists either way.
		if repository.IsUniqueViolation(err) {
			return nil
		}
		return err
	}

	s.logger.Info("seeded account", zap.String("email", email), zap.String("role", string(role)))
	return nil
}
