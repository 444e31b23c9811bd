package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"synthetic-audience/internal/service"
)

const authClaimsKey = "auth_claims"

// AccessTokenParser valida un bearer token de cliente.
type AccessTokenParser interface {
	ParseAccessToken(token string) (service.Claims, error)
}

// JWTAuthMiddleware exige un access token valido y deja los claims del cliente en el contexto.
func JWTAuthMiddleware(tokens AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetAuthClaims devuelve los claims que dejo JWTAuthMiddleware.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
