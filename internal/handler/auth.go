package handler

import (
	"github.com/deppfellow/vistual/internal/middleware"
	"github.com/deppfellow/vistual/internal/model/user"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/deppfellow/vistual/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(s *server.Server, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

func (h *AuthHandler) Register(c echo.Context, payload *user.RegisterPayload) (*user.User, error) {
	return h.auth.Register(c.Request().Context(), payload)
}

func (h *AuthHandler) Login(c echo.Context, payload *user.LoginPayload) (*user.AuthResponse, error) {
	return h.auth.Login(c.Request().Context(), payload)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context, _ *NoPayload) (*user.User, error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}
	return h.auth.GetUser(c.Request().Context(), userID)
}
