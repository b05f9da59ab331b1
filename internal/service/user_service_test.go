package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursehub/course-service/internal/auth"
	"github.com/coursehub/course-service/internal/domain"
	"github.com/coursehub/course-service/internal/events"
	"github.com/coursehub/course-service/internal/service"
	"github.com/coursehub/course-service/internal/worker"
)

func newUserFixture(t *testing.T, policy auth.Policy) (*service.UserService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	pool := worker.NewHashPool(auth.NewHasher(4), 2)
	guard := auth.NewGuard(policy, domain.PrivilegedRoles()...)
	svc := service.NewUserService(users, guard, pool, events.NewInMemoryDispatcher(), zap.NewNop())
	return svc, users
}

func seedUser(t *testing.T, users *fakeUserRepo, email string, role domain.Role) domain.Identity {
	t.Helper()
	user := &domain.User{
		Email:        email,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceh",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return domain.IdentityOf(user)
}

func TestGetUserDefaultPolicy(t *testing.T) {
	svc, users := newUserFixture(t, auth.PolicyRoleAndOwner)
	ctx := context.Background()

	admin := seedUser(t, users, "admin@x.com", domain.RoleAdmin)
	regular := seedUser(t, users, "user@x.com", domain.RoleUser)

	// Privileged caller reading their own record.
	got, err := svc.GetUser(ctx, admin, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@x.com", got.Email)

	// Under role_and_owner even an admin cannot read a foreign record,
	// and a regular user cannot read their own.
	_, err = svc.GetUser(ctx, admin, regular.ID)
	assert.Equal(t, "PERMISSION_DENIED", errCode(t, err))
	_, err = svc.GetUser(ctx, regular, regular.ID)
	assert.Equal(t, "PERMISSION_DENIED", errCode(t, err))
}

func TestGetUserRoleOrOwnerPolicy(t *testing.T) {
	svc, users := newUserFixture(t, auth.PolicyRoleOrOwner)
	ctx := context.Background()

	admin := seedUser(t, users, "admin@x.com", domain.RoleAdmin)
	regular := seedUser(t, users, "user@x.com", domain.RoleUser)

	_, err := svc.GetUser(ctx, admin, regular.ID)
	assert.NoError(t, err)
	_, err = svc.GetUser(ctx, regular, regular.ID)
	assert.NoError(t, err)
	_, err = svc.GetUser(ctx, regular, admin.ID)
	assert.Equal(t, "PERMISSION_DENIED", errCode(t, err))
}

func TestGetUserNotFound(t *testing.T) {
	svc, users := newUserFixture(t, auth.PolicyRoleAndOwner)
	admin := seedUser(t, users, "admin@x.com", domain.RoleAdmin)

	// A missing record is NotFound, never conflated with a permission denial.
	_, err := svc.GetUser(context.Background(), admin, uuid.NewString())
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestUpdateUserPassword(t *testing.T) {
	svc, users := newUserFixture(t, auth.PolicyRoleOrOwner)
	ctx := context.Background()

	regular := seedUser(t, users, "user@x.com", domain.RoleUser)
	before, err := users.GetByID(ctx, regular.ID)
	require.NoError(t, err)

	newPassword := "password2"
	updated, err := svc.UpdateUser(ctx, regular, regular.ID, service.UserUpdate{Password: &newPassword})
	require.NoError(t, err)
	assert.Equal(t, regular.Email, updated.Email)

	after, err := users.GetByID(ctx, regular.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
	assert.NotContains(t, after.PasswordHash, newPassword)
}

func TestUpdateUserDenied(t *testing.T) {
	svc, users := newUserFixture(t, auth.PolicyRoleOrOwner)
	ctx := context.Background()

	admin := seedUser(t, users, "admin@x.com", domain.RoleAdmin)
	regular := seedUser(t, users, "user@x.com", domain.RoleUser)

	newPassword := "password2"
	_, err := svc.UpdateUser(ctx, regular, admin.ID, service.UserUpdate{Password: &newPassword})
	assert.Equal(t, "PERMISSION_DENIED", errCode(t, err))
}

func TestDeleteUser(t *testing.T) {
	svc, users := newUserFixture(t, auth.PolicyRoleOrOwner)
	ctx := context.Background()

	admin := seedUser(t, users, "admin@x.com", domain.RoleAdmin)
	regular := seedUser(t, users, "user@x.com", domain.RoleUser)

	require.NoError(t, svc.DeleteUser(ctx, admin, regular.ID))

	_, err := users.GetByID(ctx, regular.ID)
	assert.Error(t, err)

	err = svc.DeleteUser(ctx, admin, regular.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}
