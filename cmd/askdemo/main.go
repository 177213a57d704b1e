package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	app "github.com/Heropr/ask-me-anything"
	"github.com/Heropr/ask-me-anything/internal/config"
	"github.com/Heropr/ask-me-anything/internal/content"
	"github.com/Heropr/ask-me-anything/internal/engine"
	"github.com/Heropr/ask-me-anything/internal/flows"
	"github.com/Heropr/ask-me-anything/internal/metrics"
	"github.com/Heropr/ask-me-anything/internal/script"
	"github.com/Heropr/ask-me-anything/internal/server"
	"github.com/Heropr/ask-me-anything/pkg/events"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

type askdemo struct {
	cfg        *config.Config
	repo       *content.Repository
	scripts    *script.LuaEnv
	hub        *events.Hub
	stream     *events.Stream
	engine     *engine.Engine
	metrics    *metrics.Metrics
	detach     []events.Unsubscribe
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrLoadContent = errors.New("failed to load content")
	ErrLoadFlows   = errors.New("failed to load flow definitions")
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", log.Error(err))
	}

	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &askdemo{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *askdemo) run() error {
	if err := s.initializeContent(); err != nil {
		return err
	}

	if err := s.initializeEngine(); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *askdemo) setupLogging() {
	level := log.ParseLevel(s.cfg.LogLevel)

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Ask Me Anything demo starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort),
		slog.Duration("processing_tick", s.cfg.ProcessingTick),
		slog.Duration("processing_settle", s.cfg.ProcessingSettle),
		slog.Duration("auto_advance", s.cfg.AutoAdvance),
		slog.String("replace_policy", string(s.cfg.ReplacePolicy)),
		slog.String("flow_dir", s.cfg.FlowDir))
}

func (s *askdemo) initializeContent() error {
	tables, err := content.DefaultTables()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadContent, err)
	}

	s.repo = content.NewRepository(tables, s.cfg.UrgentDentistCount)
	s.scripts = script.NewLuaEnv()
	if err := flows.RegisterAll(s.repo, s.scripts); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFlows, err)
	}

	if s.cfg.FlowDir == "" {
		return nil
	}
	defs, err := content.LoadDir(s.cfg.FlowDir, s.scripts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFlows, err)
	}
	for _, def := range defs {
		if err := s.repo.Register(def, s.scripts); err != nil {
			return fmt.Errorf("%w: %w", ErrLoadFlows, err)
		}
		slog.Info("Flow loaded",
			log.FlowID(def.ID),
			slog.String("dir", s.cfg.FlowDir))
	}
	return nil
}

func (s *askdemo) initializeEngine() error {
	s.hub = events.NewHub()
	s.stream = events.NewStream(s.hub)

	s.metrics = metrics.New(
		metrics.WithRuntimeCollectors(),
		metrics.WithActionIDs(s.repo.ActionIDs()...),
	)
	s.detach = append(s.detach, s.metrics.Attach(s.hub))

	eng, err := engine.New(s.cfg, engine.Dependencies{
		Repository: s.repo,
		Hub:        s.hub,
		Scripts:    s.scripts,
	})
	if err != nil {
		return err
	}
	s.engine = eng
	s.detach = append(s.detach,
		server.AttachActions(s.hub, eng, server.DefaultActionFlows),
	)
	s.engine.Start()
	return nil
}

func (s *askdemo) startServer() {
	s.apiServer = server.NewServer(s.engine, s.repo, s.stream,
		server.WithMetrics(s.metrics.Handler()),
		server.WithVersion(app.Version),
	)
	router := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *askdemo) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()

	if err := s.engine.Stop(); err != nil {
		slog.Error("Engine shutdown failed", log.Error(err))
	}

	for _, detach := range s.detach {
		detach()
	}
	s.stream.Close()

	slog.Info("Server exited")
}
