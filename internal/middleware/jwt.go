package middleware

import (
	"context"  // Revocation lookups
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework

	"payportal/internal/utils" // JWT utility functions
)

// Context keys set by JWTAuthMiddleware
const (
	UserIDKey  = "userID"
	RoleKey    = "role"
	TokenIDKey = "tokenID"
)

// RevocationChecker reports whether a token id was revoked at logout
type RevocationChecker interface {
	TokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTAuthMiddleware validates JWT tokens, rejects revoked ones and extracts
// user information
func JWTAuthMiddleware(secret string, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		// Reject tokens revoked by logout or refresh
		if revoked != nil {
			gone, err := revoked.TokenRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			if gone {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				return
			}
		}
		c.Set(UserIDKey, claims.UserID) // Store userID in context
		c.Set(RoleKey, claims.Role)     // Store role in context
		c.Set(TokenIDKey, claims.ID)    // Store token id for logout
		c.Next()                        // Proceed to the next handler
	}
}
