package middlewares

import (
	"net/http"
	"strings"

	"codecrackers/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	UserContextKey     = "userID"
	UsernameContextKey = "username"
	AdminContextKey    = "isAdmin"
)

// AuthMiddleware enforces authentication. Tokens come from the external
// identity provider as a bearer header; this layer only verifies them.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(UserContextKey, claims.UserID)
		c.Set(UsernameContextKey, claims.Username)
		c.Set(AdminContextKey, claims.IsAdmin)
		c.Next()
	}
}

// AdminMiddleware allows only tokens carrying the admin claim. It must run
// after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAdmin, ok := c.Get(AdminContextKey); !ok || isAdmin != true {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	// Browser sessions keep the token in a cookie instead.
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie
	}

	return ""
}
