// README: Firebase bearer-token auth middleware and caller accessors.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roadbook/internal/infra"
)

const (
	ctxUID  = "auth.uid"
	ctxRole = "auth.role"
)

// Auth rejects requests without a valid Firebase ID token.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if !ok {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		if !verify(c, verifier, raw) {
			return
		}
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through but still rejects a token
// that is present and invalid.
func OptionalAuth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		raw, ok := bearer(c)
		if !ok {
			abortUnauthorized(c, "malformed authorization header")
			return
		}
		if !verify(c, verifier, raw) {
			return
		}
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CallerRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// CallerUID is empty for anonymous requests.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxUID)
}

// CallerRole is the token's "role" custom claim, empty when unset.
func CallerRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func bearer(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

func verify(c *gin.Context, verifier infra.TokenVerifier, raw string) bool {
	tok, err := verifier.VerifyIDToken(c.Request.Context(), raw)
	if err != nil || tok == nil {
		abortUnauthorized(c, "invalid token")
		return false
	}
	c.Set(ctxUID, tok.UID)
	if role, ok := tok.Claims["role"].(string); ok {
		c.Set(ctxRole, role)
	}
	return true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
