package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invogen/internal/domain"
	"invogen/internal/service"
)

const (
	ContextKeyAccountID = "account_id"
	ContextKeyEmail     = "email"
	ContextKeyTier      = "tier"
	ContextKeyClaims    = "claims"
)

// AuthMiddleware returns Gin middleware that validates JWT tokens and
// injects account context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyTier, string(claims.Tier))
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetAccountID extracts the account ID from the Gin context.
func GetAccountID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyAccountID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return val.(uuid.UUID), nil
}

// GetEmail extracts the account email from the Gin context.
func GetEmail(c *gin.Context) string {
	val, exists := c.Get(ContextKeyEmail)
	if !exists {
		return ""
	}
	return val.(string)
}

// GetTier extracts the account tier string from the Gin context.
func GetTier(c *gin.Context) string {
	val, exists := c.Get(ContextKeyTier)
	if !exists {
		return ""
	}
	return val.(string)
}
