package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/pagination"
	"cryptofolio/internal/services"
	"cryptofolio/internal/uuid"
)

// AdminHandler serves the admin panel's user management surface.
type AdminHandler struct {
	userService services.UserServicer
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(userService services.UserServicer) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// ListUsersQuery holds the user list filters.
type ListUsersQuery struct {
	pagination.PageRequest
	Role string `form:"role" binding:"omitempty,user_role"`
}

// ListUsers returns a page of registered users
// @Summary     List users
// @Description List registered users, newest first, optionally filtered by
// @Description role. Admin only.
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       role query string false "Filter to one role (user or admin)"
// @Success     200 {object} map[string]interface{} "Paginated users"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.userService.ListUsers(query.Role, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteUser deletes a user and their transaction ledger
// @Summary     Delete user
// @Description Delete a user account and cascade-delete their transactions.
// @Description Admin only; this is the only path that deletes ledger rows.
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} map[string]interface{} "Deletion confirmed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if !uuid.IsValid(id) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid user id"))
		return
	}

	if err := h.userService.DeleteUser(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
