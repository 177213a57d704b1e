package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Heropr/ask-me-anything/internal/content"
	"github.com/Heropr/ask-me-anything/pkg/api"
)

func (s *Server) addQA(c *gin.Context) {
	var req api.QARequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		badRequest(c, ErrMissingQuestion)
		return
	}
	s.engine.AddQAEntry(req.Question, req.Answer, req.IsTaskClarification)
	s.respondSession(c)
}

// ask answers a typed question from the canned tables. While a flow is
// active, or when the caller marks the question as task related, the
// clarification table is used instead of the explore table
func (s *Server) ask(c *gin.Context) {
	var req api.AskRequest
	if !bindJSON(c, &req) {
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		badRequest(c, ErrMissingQuestion)
		return
	}

	answer, matched, task := s.answer(question, req.Task)
	if !matched {
		slog.Debug("No canned answer",
			slog.String("question", question),
			slog.Bool("task", task))
	}
	s.engine.AddQAEntry(question, answer, task)

	c.JSON(http.StatusOK, api.AskResponse{
		Answer:  answer,
		Matched: matched,
		Session: s.engine.Session(),
	})
}

func (s *Server) answer(question string, task bool) (string, bool, bool) {
	if task || s.engine.IsFlowActive() {
		answer, ok := s.repo.GetTaskClarificationAnswer(question)
		return answer, ok, true
	}
	answer, ok := s.repo.GetExploreAnswer(question)
	return answer, ok, false
}

func (s *Server) exploreQuestions(c *gin.Context) {
	topic := content.ExploreTopic(c.DefaultQuery("topic",
		string(content.TopicInitial)))
	qs := s.repo.GetExploreQuestions(topic)
	c.JSON(http.StatusOK, api.SuggestionsResponse{
		Suggestions: qs,
		Count:       len(qs),
	})
}

func (s *Server) clearConversation(c *gin.Context) {
	s.engine.ClearConversation()
	s.respondSession(c)
}

func (s *Server) truncateConversation(c *gin.Context) {
	var req api.TruncateRequest
	if !bindJSON(c, &req) {
		return
	}
	s.engine.TruncateConversation(req.Index)
	s.respondSession(c)
}
