package middleware

// identity.go defines helpers shared across middleware files. The rate
// limiter and response cache both build per-user keys and need a stable
// string form of the authenticated identity, or "anon" for guests.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the user_id stored by JWTAuth as a string. JWT
// numeric claims decode as float64, so several representations are
// handled. Unauthenticated requests map to "anon".
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return "anon"
}
