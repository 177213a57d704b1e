package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	app "github.com/Heropr/ask-me-anything"
	"github.com/Heropr/ask-me-anything/internal/content"
	"github.com/Heropr/ask-me-anything/internal/engine"
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/events"
	"github.com/Heropr/ask-me-anything/pkg/util"
)

type (
	// Server implements the HTTP API over a single engine session
	Server struct {
		engine  *engine.Engine
		repo    *content.Repository
		stream  *events.Stream
		metrics http.Handler
		version string
		sockets util.Set[*Client]
		mu      sync.Mutex
	}

	// Option customizes a Server
	Option func(*Server)
)

var (
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrMissingQuestion = errors.New("question is required")
	ErrMissingFlowID   = errors.New("flow ID is required")
	ErrNotCompleted    = errors.New("flow not completed")
)

// WithMetrics exposes the handler under /metrics
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion overrides the version reported by /health
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a new HTTP API server
func NewServer(
	eng *engine.Engine, repo *content.Repository, stream *events.Stream,
	opts ...Option,
) *Server {
	s := &Server{
		engine:  eng,
		repo:    repo,
		stream:  stream,
		version: app.Version,
		sockets: util.Set[*Client]{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}
	router.GET("/ws", s.handleWebSocket)

	routes := router.Group("/api")
	{
		// Session reads
		routes.GET("/session", s.getSession)
		routes.GET("/state", s.getState)
		routes.GET("/card", s.getCard)
		routes.GET("/history", s.getHistory)
		routes.GET("/questions", s.getQuestions)
		routes.GET("/unlocked", s.getUnlocked)

		// Flow lifecycle
		routes.GET("/flows", s.listFlows)
		routes.POST("/flows/start", s.startFlow)
		routes.POST("/flows/cancel", s.cancelFlow)
		routes.POST("/flows/complete", s.completeFlow)
		routes.GET("/flows/completed", s.getCompleted)
		routes.PUT("/flows/completed/:flowID", s.markCompleted)
		routes.DELETE("/flows/completed/:flowID", s.revokeCompletion)

		// Card interactions
		routes.POST("/choice", s.handleChoice)
		routes.POST("/form", s.handleForm)
		routes.POST("/entity", s.handleEntity)
		routes.POST("/action", s.handleAction)
		routes.POST("/back", s.handleBack)

		// Conversation
		routes.POST("/qa", s.addQA)
		routes.POST("/ask", s.ask)
		routes.GET("/explore", s.exploreQuestions)
		routes.DELETE("/conversation", s.clearConversation)
		routes.POST("/conversation/truncate", s.truncateConversation)

		// Member lookups
		routes.GET("/user/profile", s.getProfile)
		routes.GET("/user/appointments", s.getAppointments)
		routes.GET("/user/claims", s.getClaims)
		routes.GET("/user/family", s.getFamily)
	}

	return router
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func (s *Server) respondSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Session())
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, fmt.Errorf("%w: %w", ErrInvalidJSON, err))
		return false
	}
	return true
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, err)
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}
