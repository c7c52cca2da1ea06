package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipes/pkg/recipes/models"
)

const (
	// Keyword is the Authorization scheme, as in "Token <key>"
	Keyword = "Token"
	// ContextKeyUserID is the key for user ID in gin context
	ContextKeyUserID = "user_id"
	// ContextKeyUser is the key for the authenticated user in gin context
	ContextKeyUser = "user"
)

// TokenResolver maps a token key to its user. Implementations return
// ErrInvalidToken for unknown keys and ErrInactiveUser for disabled accounts.
type TokenResolver interface {
	ResolveToken(ctx context.Context, key string) (*models.User, error)
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", Keyword)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// TokenAuthMiddleware validates "Token <key>" headers and sets the user in context
func TokenAuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authentication credentials were not provided")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) == 0 || !strings.EqualFold(parts[0], Keyword) {
			unauthorized(c, "Authentication credentials were not provided")
			return
		}
		if len(parts) != 2 {
			unauthorized(c, "Invalid token header")
			return
		}

		user, err := resolver.ResolveToken(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, ErrInactiveUser):
				unauthorized(c, "User inactive or deleted")
			case errors.Is(err, ErrInvalidToken):
				unauthorized(c, "Invalid token")
			default:
				c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			}
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)

		c.Next()
	}
}

// RequireStaff middleware checks if the user has the staff flag
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUser(c)
		if !exists {
			unauthorized(c, "Authentication credentials were not provided")
			return
		}

		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}

		c.Next()
	}
}

// GetUserID returns the user ID from the gin context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUser returns the authenticated user from the gin context
func GetUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	return user.(*models.User), true
}
