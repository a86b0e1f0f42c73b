// Package middleware contains shared Gin middleware used by the gateway.
//
// This file provides the credential check for webhook deliveries and a
// small set of hardening headers for the JSON API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth returns a Gin middleware that requires
// "Authorization: Bearer <token>" on every request it guards. The token is
// the shared secret read from the bot's token file at startup. Comparison
// is constant-time.
//
// Failures get a 401 with the standard error envelope; the offered
// credential is never logged.
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		offered, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(offered), []byte(token)) != 1 {
			c.Header("WWW-Authenticate", `Bearer realm="kootbot"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "missing or invalid bearer token",
			})
			return
		}
		c.Next()
	}
}

// SecurityHeaders returns a Gin middleware adding conservative hardening
// headers suitable for an API that only ever serves JSON.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		c.Next()
	}
}
