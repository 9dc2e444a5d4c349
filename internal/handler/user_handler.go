package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"ems/internal/auth"
	apperr "ems/internal/errors"
	"ems/internal/model"
	"ems/internal/service"
)

// UserHandler serves the signed-in caller's own account.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UserResponse wraps the public projection of an account.
type UserResponse struct {
	Success bool             `json:"success" example:"true"`
	Data    model.PublicUser `json:"data"`
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperr.Authentication(auth.MsgNoToken)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return apperr.Authentication(auth.MsgInvalidToken)
	}

	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{Success: true, Data: user.Public()})
}
