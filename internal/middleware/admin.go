package middleware

import (
	"context"  // User lookups
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"payportal/internal/domain" // Importing domain models
)

// UserFinder loads users by id
type UserFinder interface {
	UserByID(ctx context.Context, id string) (*domain.User, error)
}

// AdminOnlyMiddleware checks the user's role from the store on each request,
// so a demoted admin loses access before their token expires
func AdminOnlyMiddleware(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey) // Get userID from context
		// Check if userID exists in context
		if userID == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := users.UserByID(c.Request.Context(), userID) // Fetch user from store
		if err != nil || !user.IsAdmin() {
			// If user not found or not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Set(RoleKey, user.Role) // Refresh role from the store
		c.Next()                  // If admin, proceed to the next handler
	}
}
