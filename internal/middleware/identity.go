package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/codecollab/pkg/auth"
)

const UserIDKey = "userID"

// Identity resolves an optional guest identity token from ?token= or the
// Authorization header and stores its user id under UserIDKey.
// A token that is present but invalid is always rejected; a missing one only
// when required is set.
func Identity(jwtManager *auth.JWTManager, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractToken(c.Request)
		if err != nil || jwtManager == nil {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
				return
			}
			c.Next()
			return
		}

		claims, err := jwtManager.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

// UserID returns the user id set by Identity, empty for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
