package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/logging"
	"github.com/Skotchmaster/sweetcrust/internal/service"
	"github.com/Skotchmaster/sweetcrust/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "register")

	var req transport.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(l, "register_failed", err)
	}

	u, err := h.Svc.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return fail(l, "register_failed", err)
	}

	l.Info("register_success", "user_id", u.ID, "role", u.Role)
	return c.JSON(http.StatusCreated, transport.RegisterResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "login")

	// An unreadable body is a failed login like any other.
	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "login_failed", apperr.ErrInvalidCredentials)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	l.Info("login_success", "role", res.Role)
	return c.JSON(http.StatusOK, res)
}
