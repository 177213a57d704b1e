package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Heropr/ask-me-anything/pkg/api"
)

func (s *Server) getSession(c *gin.Context) {
	s.respondSession(c)
}

func (s *Server) getState(c *gin.Context) {
	st := s.engine.GetState()
	if st == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) getCard(c *gin.Context) {
	card := s.engine.GetCurrentCard()
	if card == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) getHistory(c *gin.Context) {
	entries := s.engine.GetConversationHistory()
	c.JSON(http.StatusOK, api.HistoryResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

func (s *Server) getQuestions(c *gin.Context) {
	qs := s.engine.GetContextualQuestions()
	c.JSON(http.StatusOK, api.QuestionsResponse{
		Questions: qs,
		Count:     len(qs),
	})
}

func (s *Server) getUnlocked(c *gin.Context) {
	actions := s.engine.GetUnlockedActions()
	if actions == nil {
		actions = []api.Suggestion{}
	}
	c.JSON(http.StatusOK, api.SuggestionsResponse{
		Suggestions: actions,
		Count:       len(actions),
	})
}
