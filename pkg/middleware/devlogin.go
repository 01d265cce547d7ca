package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	userrepo "nolabor/pkg/user/repository"
)

// DevLogin supplies a user identity from the UID cookie (or ?uid= for
// manual testing) and makes sure the users row exists. Real auth is an
// external service in front of this one.
func DevLogin(users userrepo.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := ""
			if ck, err := c.Cookie("NOLABOR_UID"); err == nil {
				uid = ck.Value
			}
			if uid == "" {
				if q := c.QueryParam("uid"); q != "" {
					uid = q
				} else {
					uid = "U_DEV_DEFAULT"
				}
				c.SetCookie(&http.Cookie{Name: "NOLABOR_UID", Value: uid, Path: "/"})
			}
			if users != nil {
				if _, err := users.Ensure(uid); err != nil {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user store unavailable"})
				}
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}
