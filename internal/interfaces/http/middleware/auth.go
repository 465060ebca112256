// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/domain/policy"
	"github.com/your-org/retail-backend/internal/pkg/auth"
)

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from header
		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		// Validate access token
		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Store actor information in context
		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("branch_id", claims.BranchID)
		c.Set("branch_role", claims.BranchRole)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// HeadOfficeMiddleware ensures the actor belongs to the head office
func HeadOfficeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("branch_role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if role.(string) != string(branch.RoleHeadOffice) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Head office access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetActorFromContext extracts the authenticated actor from gin context
func GetActorFromContext(c *gin.Context) (policy.Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return policy.Actor{}, false
	}
	email, _ := c.Get("user_email")
	branchID, _ := c.Get("branch_id")
	role, _ := c.Get("branch_role")

	return policy.Actor{
		ID:       userID.(uint),
		Email:    email.(string),
		BranchID: branchID.(uint),
		Role:     branch.Role(role.(string)),
	}, true
}
