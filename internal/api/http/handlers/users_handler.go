package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/washline/laundry-service/internal/api/dto"
	"github.com/washline/laundry-service/internal/service"
)

// UsersHandler exposes profile, role and deletion endpoints.
type UsersHandler struct {
	users   *service.UserService
	cascade *service.CascadeService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, cascade *service.CascadeService) *UsersHandler {
	return &UsersHandler{users: users, cascade: cascade}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.Me(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// UpdateMe handles PATCH /users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	var req dto.ProfileUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), principal(c), service.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// ChangeRole handles PATCH /users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	var req dto.RoleChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.ChangeRole(c.UserContext(), principal(c), c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	report, err := h.cascade.DeleteUser(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, report)
}
