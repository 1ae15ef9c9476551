package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/db"
	"github.com/Skotchmaster/sweetcrust/internal/metrics"
	authmw "github.com/Skotchmaster/sweetcrust/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/sweetcrust/internal/middleware/logging"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/transport"
)

const uploadBodyLimit = "6M"

type Deps struct {
	DB       *gorm.DB
	Tokens   authmw.Verifier
	Auth     *AuthHTTP
	Catalog  *CatalogHTTP
	Orders   *OrderHTTP
	Messages *MessageHTTP

	// UploadDir is served under UploadURLPrefix when set.
	UploadDir       string
	UploadURLPrefix string

	CORSOrigins []string

	// Zero AuthRateLimit disables rate limiting on login and register.
	AuthRateLimit float64
	AuthRateBurst int
}

// New builds the echo instance with the middleware chain and every route.
func New(log *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Validator = transport.NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		metrics.Middleware(),
		loggingmw.RequestLogger(log),
	)
	if len(d.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: d.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	if d.UploadDir != "" {
		e.Static(d.UploadURLPrefix, d.UploadDir)
	}

	authn := authmw.Authenticate(d.Tokens)
	adminOnly := authmw.RequireRole(models.RoleAdmin)
	staffOrAdmin := authmw.RequireRole(models.RoleStaff, models.RoleAdmin)
	limiter := authLimiter(d.AuthRateLimit, d.AuthRateBurst)

	api := e.Group("/api")

	api.POST("/register", d.Auth.Register, limiter)
	api.POST("/login", d.Auth.Login, limiter)

	products := api.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/search", d.Catalog.SearchProducts)

	uploadLimit := middleware.BodyLimit(uploadBodyLimit)
	products.POST("", d.Catalog.CreateProduct, authn, adminOnly, uploadLimit)
	products.PUT("/:id", d.Catalog.UpdateProduct, authn, adminOnly, uploadLimit)
	products.DELETE("/:id", d.Catalog.DeleteProduct, authn, adminOnly)

	orders := api.Group("/orders", authn)
	orders.POST("", d.Orders.CreateOrder, staffOrAdmin)
	orders.GET("", d.Orders.ListOrders, staffOrAdmin)
	orders.PUT("/:id", d.Orders.UpdateOrderStatus, adminOnly)

	api.POST("/messages", d.Messages.SubmitMessage)
	api.GET("/messages", d.Messages.ListMessages, authn, adminOnly)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	if err := db.Ping(c.Request().Context(), d.DB); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}

func authLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
