package api

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware enforces a valid JWT and exposes the tenant identity to
// handlers. Token issuance lives in the auth service; this service only
// parses.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Printf("[AuthMiddleware] missing Authorization header")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			log.Printf("[AuthMiddleware] invalid auth format")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			log.Printf("[AuthMiddleware] JWT_SECRET not set")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server not configured"})
			c.Abort()
			return
		}
		token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Printf("[AuthMiddleware] token invalid: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if v, ok := claims["tenant_id"].(string); ok {
				c.Set("tenant_id", v)
			}
			if v, ok := claims["display_name"].(string); ok {
				c.Set("display_name", v)
			}
		}
		c.Next()
	}
}

// TenantMiddleware rejects tokens that carry no tenant identity; every
// catalog operation is tenant-scoped.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenantID := c.GetString("tenant_id"); tenantID == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Tenant identity required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFrom extracts the write-stamping identity from the request context.
func ActorFrom(c *gin.Context) models.Actor {
	return models.Actor{
		TenantID:    c.GetString("tenant_id"),
		DisplayName: c.GetString("display_name"),
	}
}
