package middleware

// identity.go defines helper functions shared across middleware files.
// Currently it provides a memberID extraction function that reads the id
// stored by JWTAuth. When no member is authenticated, "guest" is
// returned so rate limiting and caching still have a usable key.

import (
	"github.com/labstack/echo/v4"
)

// memberID extracts the authenticated member's id from context. It
// returns "guest" when no member is authenticated.
func memberID(c echo.Context) string {
	if v, ok := c.Get("member_id").(string); ok && v != "" {
		return v
	}
	return "guest"
}
