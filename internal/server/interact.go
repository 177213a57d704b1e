package server

import (
	"github.com/gin-gonic/gin"

	"github.com/Heropr/ask-me-anything/pkg/api"
)

func (s *Server) handleChoice(c *gin.Context) {
	var req api.ChoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	s.engine.HandleChoice(req.Choice)
	s.respondSession(c)
}

func (s *Server) handleForm(c *gin.Context) {
	var req api.FormRequest
	if !bindJSON(c, &req) {
		return
	}
	s.engine.HandleFormSubmit(req.Data)
	s.respondSession(c)
}

func (s *Server) handleEntity(c *gin.Context) {
	var req api.EntityRequest
	if !bindJSON(c, &req) {
		return
	}
	s.engine.HandleEntitySelect(req.Entity)
	s.respondSession(c)
}

func (s *Server) handleAction(c *gin.Context) {
	var req api.ActionRequest
	if !bindJSON(c, &req) {
		return
	}
	s.engine.HandleAction(req.Action)
	s.respondSession(c)
}

func (s *Server) handleBack(c *gin.Context) {
	s.engine.GoBack()
	s.respondSession(c)
}
