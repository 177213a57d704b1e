package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Heropr/ask-me-anything/internal/config"
	"github.com/Heropr/ask-me-anything/internal/scheduler"
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/events"
)

type (
	// Engine is the flow state machine. It owns the single active flow
	// state, the completed-flow set, and the conversation log
	Engine struct {
		config    *config.Config
		repo      Repository
		hub       *events.Hub
		scripts   ScriptEvaluator
		scheduler *scheduler.Scheduler
		random    func() string
		entryIDs  func() api.EntryID
		ctx       context.Context
		cancel    context.CancelFunc
		wg        sync.WaitGroup

		mu        sync.Mutex
		state     *api.FlowState
		completed []api.FlowID
		log       *conversation
		def       *api.FlowDefinition
		proc      *processing
		advancing api.EntryID
		gen       uint64
		outbox    []func()
		flushing  bool
	}

	// Dependencies holds the collaborators the engine is built from. Clock,
	// TimerConstructor, Random, and EntryIDs are optional
	Dependencies struct {
		Repository       Repository
		Hub              *events.Hub
		Scripts          ScriptEvaluator
		Clock            scheduler.Clock
		TimerConstructor scheduler.TimerConstructor
		Random           func() string
		EntryIDs         func() api.EntryID
	}

	// Repository is the read-only content source the engine consults
	Repository interface {
		GetFlow(id api.FlowID) (*api.FlowDefinition, bool)
		GetDentistsSync(filter api.DentistFilter) []api.Dentist
		GetTaskQuestions(flowID api.FlowID, stepID api.StepID) []string
		GetAllUnlockedActions(ids []api.FlowID) []api.Suggestion
	}

	// ScriptEvaluator resolves Scripted transitions
	ScriptEvaluator interface {
		NextStep(src string, ch *api.Choice, st api.FlowState) (api.StepID, error)
	}
)

var (
	ErrMissingDependency = errors.New("missing engine dependency")
	ErrInvalidConfig     = errors.New("invalid engine config")
	ErrShutdownTimeout   = errors.New("shutdown timeout exceeded")
	ErrFlowNotFound      = errors.New("flow not found")
	ErrGuardRejected     = errors.New("flow guard rejected start")
	ErrFlowActive        = errors.New("another flow is active")
	ErrStepNotFound      = errors.New("step not found")
	ErrDeadEnd           = errors.New("no next step resolved")
	ErrUnknownTransition = errors.New("unknown transition type")
	ErrNoScripts         = errors.New("no script evaluator configured")
)

// New creates an engine from the provided configuration and dependencies
func New(cfg *config.Config, deps Dependencies) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config", ErrMissingDependency)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if deps.Repository == nil {
		return nil, fmt.Errorf("%w: repository", ErrMissingDependency)
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("%w: event hub", ErrMissingDependency)
	}

	random := deps.Random
	if random == nil {
		random = RandomToken
	}
	entryIDs := deps.EntryIDs
	if entryIDs == nil {
		entryIDs = NewEntryID
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		config:    cfg,
		repo:      deps.Repository,
		hub:       deps.Hub,
		scripts:   deps.Scripts,
		scheduler: scheduler.New(deps.Clock, deps.TimerConstructor),
		random:    random,
		entryIDs:  entryIDs,
		ctx:       ctx,
		cancel:    cancel,
		log:       newConversation(),
	}, nil
}

// Start begins running scheduled processing ticks and auto-advances
func (e *Engine) Start() {
	slog.Info("Engine starting")
	e.wg.Go(func() {
		e.scheduler.Run(e.ctx)
	})
}

// Stop halts the scheduler. Pending ticks and continuations are dropped
func (e *Engine) Stop() error {
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Engine stopped")
		return nil
	case <-time.After(e.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// NewEntryID returns a time-ordered conversation entry ID
func NewEntryID() api.EntryID {
	id, err := uuid.NewV7()
	if err != nil {
		return api.EntryID(uuid.NewString())
	}
	return api.EntryID(id.String())
}

// RandomToken returns a short uppercase token used for {random}
// placeholders, such as claim and member numbers
func RandomToken() string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(s[:6])
}
