package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Heropr/ask-me-anything/internal/config"
	"github.com/Heropr/ask-me-anything/internal/content"
	"github.com/Heropr/ask-me-anything/internal/engine"
	"github.com/Heropr/ask-me-anything/internal/flows"
	"github.com/Heropr/ask-me-anything/internal/script"
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/events"
)

// TestEngineEnv holds all the components needed for engine testing
type TestEngineEnv struct {
	Engine   *engine.Engine
	Repo     *content.Repository
	Config   *config.Config
	Hub      *events.Hub
	Stream   *events.Stream
	Scripts  *script.LuaEnv
	Recorder *Recorder
	Cleanup  func()
}

// NewTestEngine creates a started engine over the built-in flows, with
// every event recorded
func NewTestEngine(t *testing.T) *TestEngineEnv {
	t.Helper()
	return NewTestEngineWithConfig(t, NewTestConfig())
}

// NewTestEngineWithConfig creates a started engine with the provided
// configuration
func NewTestEngineWithConfig(
	t *testing.T, cfg *config.Config,
) *TestEngineEnv {
	t.Helper()

	repo, err := content.NewDefaultRepository()
	require.NoError(t, err)

	lua := script.NewLuaEnv()
	require.NoError(t, flows.RegisterAll(repo, lua))

	hub := events.NewHub()
	stream := events.NewStream(hub)
	rec := NewRecorder(hub)

	env := &TestEngineEnv{
		Repo:     repo,
		Config:   cfg,
		Hub:      hub,
		Stream:   stream,
		Scripts:  lua,
		Recorder: rec,
	}

	eng, err := engine.New(cfg, env.Dependencies())
	require.NoError(t, err)
	eng.Start()

	env.Engine = eng
	env.Cleanup = func() {
		_ = eng.Stop()
		rec.Close()
		stream.Close()
	}
	return env
}

// Dependencies returns engine dependencies backed by this environment
func (e *TestEngineEnv) Dependencies() engine.Dependencies {
	return engine.Dependencies{
		Repository: e.Repo,
		Hub:        e.Hub,
		Scripts:    e.Scripts,
	}
}

// Register validates and registers an additional flow definition
func (e *TestEngineEnv) Register(t *testing.T, def *api.FlowDefinition) {
	t.Helper()
	require.NoError(t, e.Repo.Register(def, e.Scripts))
}

// WithTestEnv creates a test engine environment, executes the provided
// function with it, and ensures cleanup happens automatically
func WithTestEnv(t *testing.T, fn func(*TestEngineEnv)) {
	t.Helper()
	env := NewTestEngine(t)
	defer env.Cleanup()
	fn(env)
}

// WithConfiguredEnv is WithTestEnv with a modified test configuration
func WithConfiguredEnv(
	t *testing.T, mod func(*config.Config), fn func(*TestEngineEnv),
) {
	t.Helper()
	cfg := NewTestConfig()
	mod(cfg)
	env := NewTestEngineWithConfig(t, cfg)
	defer env.Cleanup()
	fn(env)
}

// WithEngine creates a test engine, executes the provided function with it,
// and ensures cleanup happens automatically
func WithEngine(t *testing.T, fn func(*engine.Engine)) {
	t.Helper()
	WithTestEnv(t, func(env *TestEngineEnv) {
		fn(env.Engine)
	})
}
