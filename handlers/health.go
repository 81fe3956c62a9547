package handlers

import (
	"net/http"

	"homeease/utils"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health.
func Health(c *gin.Context) {
	utils.RespondOK(c, http.StatusOK, "Hi, I'm HomeEase", utils.GetHealthStatus())
}
