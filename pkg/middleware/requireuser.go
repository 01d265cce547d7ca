package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireUser is the strict variant for deployments behind a real auth
// gateway: the upstream must inject X-User-Id (or the UID cookie). When
// enabled=false it passes through and DevLogin's identity stands.
func RequireUser(enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return next(c)
			}
			uid := c.Request().Header.Get("X-User-Id")
			if uid == "" {
				if ck, err := c.Cookie("NOLABOR_UID"); err == nil {
					uid = ck.Value
				}
			}
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "auth required: missing user id"})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}
