package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// roleMiddleware restricts an endpoint to users holding exactly the required
// role; it must run after the JWT middleware.
func roleMiddleware(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == required {
				return next(ctx)
			}
			return echo.NewHTTPError(http.StatusForbidden, "permission denied: "+required+" role required")
		}
	}
}
