package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/coursehub/course-service/internal/api/dto"
	"github.com/coursehub/course-service/internal/auth"
	"github.com/coursehub/course-service/internal/domain"
	"github.com/coursehub/course-service/internal/service"
	apperrors "github.com/coursehub/course-service/pkg/util"
)

// UsersHandler exposes guard-gated user record endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	caller, userID, err := callerAndTarget(c)
	if err != nil {
		return err
	}

	identity, err := h.users.GetUser(c.UserContext(), caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserResponseFrom(identity))
}

// Update handles PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	caller, userID, err := callerAndTarget(c)
	if err != nil {
		return err
	}

	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	identity, err := h.users.UpdateUser(c.UserContext(), caller, userID, service.UserUpdate{Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(dto.UserResponseFrom(identity))
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	caller, userID, err := callerAndTarget(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.UserContext(), caller, userID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "user deleted successfully"})
}

func callerAndTarget(c *fiber.Ctx) (domain.Identity, string, error) {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return domain.Identity{}, "", apperrors.NewUnauthorized("not authenticated")
	}

	userID := c.Params("id")
	if _, err := uuid.Parse(userID); err != nil {
		return domain.Identity{}, "", apperrors.NewValidationError("invalid user id", map[string]any{"id": userID})
	}
	return caller, userID, nil
}
