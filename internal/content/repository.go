package content

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/log"
	"github.com/Heropr/ask-me-anything/pkg/util"
)

// Repository is the registry of flow definitions and the query surface
// over the static content tables. It is read-mostly after startup and safe
// for concurrent use
type Repository struct {
	tables      *Tables
	flows       map[api.FlowID]*api.FlowDefinition
	order       []api.FlowID
	urgentCount int
	mu          sync.RWMutex
}

// DefaultUrgentCount is the number of dentists returned for urgent visits
const DefaultUrgentCount = 2

var (
	ErrInvalidFlow        = errors.New("invalid flow definition")
	ErrDanglingTransition = errors.New("transition references unknown step")
	ErrUnknownCardType    = errors.New("unknown card type")
	ErrInvalidYAML        = errors.New("invalid flow YAML")
	ErrInvalidScript      = errors.New("invalid transition script")
	ErrConflictingNext    = errors.New("step declares more than one transition")
)

// NewRepository creates an empty registry over the provided tables
func NewRepository(tables *Tables, urgentCount int) *Repository {
	if urgentCount <= 0 {
		urgentCount = DefaultUrgentCount
	}
	return &Repository{
		tables:      tables,
		flows:       map[api.FlowID]*api.FlowDefinition{},
		urgentCount: urgentCount,
	}
}

// NewDefaultRepository creates a registry over the bundled tables
func NewDefaultRepository() (*Repository, error) {
	tables, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	return NewRepository(tables, DefaultUrgentCount), nil
}

// RegisterFlow adds a flow definition, replacing any definition already
// registered under the same ID
func (r *Repository) RegisterFlow(def *api.FlowDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flows[def.ID]; !ok {
		r.order = append(r.order, def.ID)
	}
	r.flows[def.ID] = def
	slog.Debug("Flow registered",
		log.FlowID(def.ID),
		slog.Int("steps", len(def.Steps)))
}

// GetFlow returns the definition registered under id
func (r *Repository) GetFlow(id api.FlowID) (*api.FlowDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.flows[id]
	return def, ok
}

// AllFlows returns every registered definition in registration order
func (r *Repository) AllFlows() []*api.FlowDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*api.FlowDefinition, 0, len(r.order))
	for _, id := range r.order {
		res = append(res, r.flows[id])
	}
	return res
}

// ActionIDs returns the sorted IDs of every card action declared by a
// registered step
func (r *Repository) ActionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := util.Set[string]{}
	for _, def := range r.flows {
		for _, step := range def.Steps {
			for _, a := range step.Actions {
				ids.Add(a.ID)
			}
		}
	}
	return util.Sorted(ids)
}

// GetDentists returns the dentist list narrowed by the filter
func (r *Repository) GetDentists(
	ctx context.Context, filter api.DentistFilter,
) ([]api.Dentist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.GetDentistsSync(filter), nil
}

// GetDentistsSync is the immediate form of GetDentists. The urgent filter
// keeps the first dentists in listing order
func (r *Repository) GetDentistsSync(filter api.DentistFilter) []api.Dentist {
	all := r.tables.Dentists
	if filter.UrgentOnly && len(all) > r.urgentCount {
		all = all[:r.urgentCount]
	}
	return slices.Clone(all)
}

// GetExploreQuestions returns the suggestions for a topic, falling back to
// the initial topic when the topic is unknown
func (r *Repository) GetExploreQuestions(topic ExploreTopic) []api.Suggestion {
	if qs, ok := r.tables.ExploreQuestions[topic]; ok {
		return slices.Clone(qs)
	}
	return slices.Clone(r.tables.ExploreQuestions[TopicInitial])
}

// GetExploreAnswer returns the canned answer for an explore question. The
// boolean reports whether the answer was an exact match
func (r *Repository) GetExploreAnswer(question string) (string, bool) {
	if a, ok := r.tables.ExploreAnswers[question]; ok {
		return a, true
	}
	return r.tables.Fallbacks.Explore, false
}

// GetTaskQuestions returns the contextual questions for a flow step
func (r *Repository) GetTaskQuestions(
	flowID api.FlowID, stepID api.StepID,
) []string {
	return slices.Clone(r.tables.TaskQuestions[flowID][stepID])
}

// GetTaskClarificationAnswer returns the answer to a question asked while
// a task is in progress. The boolean reports whether it was an exact match
func (r *Repository) GetTaskClarificationAnswer(question string) (string, bool) {
	if a, ok := r.tables.ClarificationAnswers[question]; ok {
		return a, true
	}
	return r.tables.Fallbacks.Clarification, false
}

// GetUnlockedActions returns the actions a completed flow makes available.
// A registered definition's own list takes precedence over the table
func (r *Repository) GetUnlockedActions(id api.FlowID) []api.Suggestion {
	if def, ok := r.GetFlow(id); ok && len(def.UnlockedActions) > 0 {
		return slices.Clone(def.UnlockedActions)
	}
	return slices.Clone(r.tables.UnlockedActions[id])
}

// GetAllUnlockedActions concatenates the unlocked actions of each flow in
// the order given. Repeated actions are kept
func (r *Repository) GetAllUnlockedActions(ids []api.FlowID) []api.Suggestion {
	var res []api.Suggestion
	for _, id := range ids {
		res = append(res, r.GetUnlockedActions(id)...)
	}
	return res
}

// GetUserProfile returns the signed-in member's profile
func (r *Repository) GetUserProfile(ctx context.Context) (UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return UserProfile{}, err
	}
	return r.tables.User.Profile, nil
}

// GetUserAppointments returns the member's booked visits
func (r *Repository) GetUserAppointments(
	ctx context.Context,
) ([]Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := make([]Appointment, 0, len(r.tables.User.Appointments))
	for _, a := range r.tables.User.Appointments {
		d, _ := r.tables.dentist(a.DentistID)
		res = append(res, Appointment{
			ID:      a.ID,
			Time:    a.Time,
			Status:  a.Status,
			Dentist: d,
		})
	}
	return res, nil
}

// GetUserClaims returns the member's submitted claims
func (r *Repository) GetUserClaims(ctx context.Context) ([]Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(r.tables.User.Claims), nil
}

// GetUserFamily returns the dependents on the member's plan
func (r *Repository) GetUserFamily(
	ctx context.Context,
) ([]FamilyMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(r.tables.User.Family), nil
}
