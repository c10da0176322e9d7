package middleware

import (
	"net/http"
	"strings"

	"github.com/fitmind/fitmind/internal/auth"
	"github.com/fitmind/fitmind/internal/common"
	"github.com/gin-gonic/gin"
)

const UserIDKey = "user_id"

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer "):])
}

// AuthRequired rejects callers without a valid bearer token with 403.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			common.Fail(c, http.StatusForbidden, 40301, "authentication required")
			return
		}
		uid, err := auth.ParseJWT(tok, secret)
		if err != nil {
			common.Fail(c, http.StatusForbidden, 40302, "invalid token")
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// AuthOptional attaches the user when a valid token is present and lets
// anonymous callers through otherwise.
func AuthOptional(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearerToken(c); tok != "" {
			if uid, err := auth.ParseJWT(tok, secret); err == nil {
				c.Set(UserIDKey, uid)
			}
		}
		c.Next()
	}
}
