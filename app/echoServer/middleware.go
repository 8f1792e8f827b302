// app/echoServer/middleware.go
package echoServer

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"libcatalog/app/echoServer/jwtx"
)

// LoginPath is where anonymous requests for gated views are sent; the
// original path rides along in ?next= so login can bounce back.
const LoginPath = "/accounts/login/"

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

func loginRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, LoginPath+"?next="+c.Request().URL.Path)
}

// LoginRequired verifies the bearer token, taken from the
// Authorization header or the session cookie. Failures redirect
// through the login page instead of answering 401.
func LoginRequired(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		NewClaimsFunc: func(echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization,cookie:session",
		ErrorHandler: func(c echo.Context, _ error) error {
			return loginRedirect(c)
		},
	})
}

// ExtractUser copies the verified subject claim into the request
// scope. Runs after LoginRequired.
func ExtractUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, err := jwtx.UserIDFromContext(c)
			if err != nil {
				return loginRedirect(c)
			}
			c.Set("user_id", uid)
			return next(c)
		}
	}
}

// PermissionChecker answers capability lookups for route guards.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID int64, perm string) (bool, error)
}

// RequirePermission guards the librarian routes. Runs after ExtractUser.
func RequirePermission(p PermissionChecker, perm string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, _ := c.Get("user_id").(int64)
			ok, err := p.HasPermission(c.Request().Context(), uid, perm)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "permission check failed")
			}
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
