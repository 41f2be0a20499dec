// README: Bearer-token auth middleware backed by a TokenVerifier (Firebase in production).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"propertyapi/internal/infra"
)

const callerKey = "caller"

// Auth rejects requests without a valid "Authorization: Bearer <token>" header
// and stores the verified caller on the context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		caller, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil || caller == nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerUID returns the authenticated caller's uid, or "" when auth is disabled.
func CallerUID(c *gin.Context) string {
	v, ok := c.Get(callerKey)
	if !ok {
		return ""
	}
	caller, ok := v.(*infra.Caller)
	if !ok {
		return ""
	}
	return caller.UID
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"type":    "about:blank",
		"title":   http.StatusText(http.StatusUnauthorized),
		"status":  http.StatusUnauthorized,
		"detail":  detail,
		"path":    c.Request.URL.Path,
		"message": "error.http.401",
	})
}
