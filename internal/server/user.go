package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getProfile(c *gin.Context) {
	profile, err := s.repo.GetUserProfile(c.Request.Context())
	respondLookup(c, profile, err)
}

func (s *Server) getAppointments(c *gin.Context) {
	res, err := s.repo.GetUserAppointments(c.Request.Context())
	respondLookup(c, res, err)
}

func (s *Server) getClaims(c *gin.Context) {
	res, err := s.repo.GetUserClaims(c.Request.Context())
	respondLookup(c, res, err)
}

func (s *Server) getFamily(c *gin.Context) {
	res, err := s.repo.GetUserFamily(c.Request.Context())
	respondLookup(c, res, err)
}

func respondLookup(c *gin.Context, res any, err error) {
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
