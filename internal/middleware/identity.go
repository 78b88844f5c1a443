package middleware

// identity.go holds the user identification helper shared by the
// rate-limit key builder. Works with whatever JWTAuth stored in the
// context; anonymous traffic is keyed as "anon".

import "github.com/labstack/echo/v4"

// currentUserID returns the authenticated user id from context, or
// "anon" when the request carries no (valid) token.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if v := c.Get("userID"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
