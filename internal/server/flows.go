package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/Heropr/ask-me-anything/internal/engine"
	"github.com/Heropr/ask-me-anything/pkg/api"
)

func (s *Server) listFlows(c *gin.Context) {
	defs := s.repo.AllFlows()
	res := make([]api.FlowSummary, 0, len(defs))
	for _, def := range defs {
		res = append(res, api.FlowSummary{
			ID:          def.ID,
			DisplayName: def.DisplayName,
			Icon:        def.Icon,
			CanStart:    s.engine.CanStartFlow(def.ID),
		})
	}

	c.JSON(http.StatusOK, api.FlowsListResponse{
		Flows: res,
		Count: len(res),
	})
}

func (s *Server) startFlow(c *gin.Context) {
	var req api.StartFlowRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.FlowID == "" {
		badRequest(c, ErrMissingFlowID)
		return
	}

	err := s.engine.TryStartFlow(req.FlowID)
	switch {
	case err == nil:
		s.respondSession(c)
	case errors.Is(err, engine.ErrFlowNotFound):
		respondError(c, http.StatusNotFound, err)
	case errors.Is(err, engine.ErrGuardRejected):
		respondError(c, http.StatusForbidden, err)
	case errors.Is(err, engine.ErrFlowActive):
		respondError(c, http.StatusConflict, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}

func (s *Server) cancelFlow(c *gin.Context) {
	s.engine.CancelFlow()
	s.respondSession(c)
}

func (s *Server) completeFlow(c *gin.Context) {
	s.engine.CompleteFlow()
	s.respondSession(c)
}

func (s *Server) getCompleted(c *gin.Context) {
	flows := s.engine.GetCompletedFlows()
	c.JSON(http.StatusOK, api.CompletedFlowsResponse{
		Flows: flows,
		Count: len(flows),
	})
}

func (s *Server) markCompleted(c *gin.Context) {
	id, ok := s.knownFlow(c)
	if !ok {
		return
	}
	s.engine.MarkFlowCompleted(id)
	s.respondSession(c)
}

func (s *Server) revokeCompletion(c *gin.Context) {
	id := api.FlowID(c.Param("flowID"))
	if !slices.Contains(s.engine.GetCompletedFlows(), id) {
		respondError(c, http.StatusNotFound,
			fmt.Errorf("%w: %s", ErrNotCompleted, id))
		return
	}
	s.engine.RevokeCompletion(id)
	s.respondSession(c)
}

func (s *Server) knownFlow(c *gin.Context) (api.FlowID, bool) {
	id := api.FlowID(c.Param("flowID"))
	if _, ok := s.repo.GetFlow(id); !ok {
		respondError(c, http.StatusNotFound,
			fmt.Errorf("%w: %s", engine.ErrFlowNotFound, id))
		return "", false
	}
	return id, true
}
