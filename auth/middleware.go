package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key under which the authenticated user id is
// stored for downstream handlers.
const UserIDKey = "user_id"

// Middleware validates the Bearer token of every request on a protected
// route and injects the caller's user id into the request context.
// This is the only place identity is established: everything downstream
// trusts it unconditionally.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing or malformed Authorization header"})
			return
		}

		claims, err := ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header, falling back
// to the "token" query parameter for websocket handshakes, where browsers
// cannot set custom headers.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], true
		}
		return "", false
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}
