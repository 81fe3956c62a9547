package handlers

import (
	"net/http"

	"homeease/middleware"
	"homeease/models"
	"homeease/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request logger from the Gin context, falling back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// mustActor returns the caller or answers 401 when the auth middleware did not run.
func mustActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthenticated", "Insufficient authorization")
	}
	return actor, ok
}
