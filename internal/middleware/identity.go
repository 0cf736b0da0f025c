package middleware

import "github.com/labstack/echo/v4"

// Context keys set by JWTAuth and OptionalJWT.
const (
	ctxClaimantID   = "user_id"
	ctxClaimantName = "user_name"
	ctxRole         = "role"
)

// ClaimantID returns the subject of a verified bearer token, if any.
func ClaimantID(c echo.Context) (string, bool) {
	s, ok := c.Get(ctxClaimantID).(string)
	return s, ok && s != ""
}

// ClaimantName returns the "name" claim of a verified bearer token.
func ClaimantName(c echo.Context) string {
	s, _ := c.Get(ctxClaimantName).(string)
	return s
}

// currentClaimant is the identity used for rate limit keys; "anon" when no
// token was presented.
func currentClaimant(c echo.Context) string {
	if id, ok := ClaimantID(c); ok {
		return id
	}
	return "anon"
}
