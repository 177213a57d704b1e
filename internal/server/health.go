package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	app "github.com/Heropr/ask-me-anything"
	"github.com/Heropr/ask-me-anything/pkg/api"
)

const healthOK = "ok"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: app.Name,
		Status:  healthOK,
		Version: s.version,
	})
}
