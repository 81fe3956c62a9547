package middleware

import (
	"net/http"
	"strings"

	"homeease/models"
	"homeease/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const actorKey = "actor"

// JWTAuthMiddleware validates the bearer token and stores the caller as a models.Actor.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "unauthenticated", "Missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		actor, err := utils.ExtractActorFromToken(tokenString)
		if err != nil {
			zap.L().Debug("token rejected", zap.String("ip", clientIP(c)), zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "unauthenticated", "Insufficient authorization")
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// ActorFrom returns the authenticated caller stored by JWTAuthMiddleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// RequireRole refuses callers whose role is not listed. It must run after JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "unauthenticated", "Insufficient authorization")
			return
		}
		if !hasRole(actor.Role, roles) {
			utils.JSONError(c, http.StatusForbidden, "forbidden", "This endpoint is not available for role "+string(actor.Role))
			return
		}
		c.Next()
	}
}
