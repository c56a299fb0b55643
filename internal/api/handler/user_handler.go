package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /users/me.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	u, err := h.service.Me(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// UpdateMe handles PUT /users/me.
//
// @Summary      Update the current user's name or password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, err := h.service.UpdateMe(c.Request().Context(), p, ports.UpdateProfileInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// DeleteMe handles DELETE /users/me.
//
// @Summary      Delete the current user
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteMe(c.Request().Context(), p); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminHandler serves identity administration.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers handles GET /admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// GrantAdmin handles POST /admin/users/:id/role/admin.
//
// @Summary      Give a user the ADMIN role
// @Description  Takes effect on the user's next login.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/role/admin [post]
func (h *AdminHandler) GrantAdmin(c echo.Context) error {
	return h.setRole(c, domain.RoleAdmin)
}

// GrantUser handles POST /admin/users/:id/role/user.
//
// @Summary      Give a user the USER role
// @Description  Takes effect on the user's next login.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/role/user [post]
func (h *AdminHandler) GrantUser(c echo.Context) error {
	return h.setRole(c, domain.RoleUser)
}

func (h *AdminHandler) setRole(c echo.Context, role domain.Role) error {
	u, err := h.service.SetRole(c.Request().Context(), c.Param("id"), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
