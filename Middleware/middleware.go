package Middleware

import (
	"net/http"

	"github.com/RafaelFrancoD/CRM-hol-stico/Utils/Token"

	"github.com/gin-gonic/gin"
)

func JwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Token.TokenValid(c); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetOwner resolves the caller's email from the token and stores it on the
// context; every record the caller touches is scoped by it.
func SetOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := Token.ExtractTokenEmail(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Set("ownerEmail", email)
		c.Next()
	}
}
