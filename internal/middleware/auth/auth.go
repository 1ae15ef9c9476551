package auth

import (
	"context"
	"errors"
	"fmt"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
)

const CtxIdentity = "identity"

type ctxKey struct{}

// Verifier is the part of tokens.Issuer the gate needs.
type Verifier interface {
	Verify(raw string) (*tokens.Identity, error)
}

// Authenticate requires "Authorization: Bearer <token>". A missing token is
// ErrUnauthenticated and a bad one is ErrInvalidToken. On success the
// identity is stored in the echo context and the request context.
func Authenticate(v Verifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  CtxIdentity,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (any, error) {
			return v.Verify(raw)
		},
		SuccessHandler: func(c echo.Context) {
			if id, ok := c.Get(CtxIdentity).(*tokens.Identity); ok {
				req := c.Request()
				c.SetRequest(req.WithContext(WithIdentity(req.Context(), id)))
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var missing *echojwt.TokenExtractionError
			if errors.As(err, &missing) || errors.Is(err, echojwt.ErrJWTMissing) {
				return apperr.ErrUnauthenticated
			}
			if errors.Is(err, apperr.ErrInvalidToken) {
				return err
			}
			return fmt.Errorf("%w (%v)", apperr.ErrInvalidToken, err)
		},
	})
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := tokens.RequireRole(IdentityFrom(c), roles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func IdentityFrom(c echo.Context) *tokens.Identity {
	if id, ok := c.Get(CtxIdentity).(*tokens.Identity); ok {
		return id
	}
	return FromContext(c.Request().Context())
}

func WithIdentity(ctx context.Context, id *tokens.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) *tokens.Identity {
	id, _ := ctx.Value(ctxKey{}).(*tokens.Identity)
	return id
}
