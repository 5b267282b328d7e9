package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// OpsOnlyMiddleware restricts access to tokens carrying the ops role
func OpsOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role") // Get role from context
		// Check the role claim set by the JWT middleware
		if !exists || role != "ops" {
			// If not an operator, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Operator access required"})
			return
		}
		c.Next() // Proceed to the next handler
	}
}
