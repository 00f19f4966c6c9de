package middleware

import (
	"net/http"
	"strings"

	"penpal/backend/internal/auth"
	"penpal/backend/internal/models"

	"github.com/gin-gonic/gin"
)

const identityKey = "penpal.identity"

// Identity resolves the caller from the Authorization bearer token, or the
// "token" query parameter for browsers opening a WebSocket. It never aborts:
// a missing or invalid token yields an unauthenticated identity.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id models.Identity
		if token := bearerToken(c); token != "" {
			if parsed, err := auth.ParseToken(secret, token); err == nil {
				id = parsed
			}
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// AuthRequired aborts with 401 unless Identity authenticated the caller.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by Identity.
func CurrentIdentity(c *gin.Context) models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}
	}
	id, _ := v.(models.Identity)
	return id
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}
