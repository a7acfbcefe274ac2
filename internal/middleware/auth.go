package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inkwell/internal/auth"
	"inkwell/internal/models"
)

const (
	UserIDKey = "user"
	AdminKey  = "admin"
)

// AuthRequired verifies the bearer token and stores the caller's id and
// admin flag on the context.
func AuthRequired(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, _ := strings.Cut(header, " ")
		if header == "" || token == "" || !strings.EqualFold(scheme, "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No access token"})
			return
		}

		claims, err := signer.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access token is invalid"})
			return
		}

		c.Set(UserIDKey, claims.ID)
		c.Set(AdminKey, claims.Admin)
		c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(AdminKey) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You don't have permissions to do this"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the id set by AuthRequired.
func CurrentUser(c *gin.Context) models.ID {
	id, _ := c.MustGet(UserIDKey).(models.ID)
	return id
}
