package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/builder"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

type (
	flowFile struct {
		StepQuestions   map[api.StepID][]string `yaml:"step_questions"`
		ID              api.FlowID              `yaml:"id"`
		DisplayName     string                  `yaml:"display_name"`
		Icon            string                  `yaml:"icon"`
		InitialStep     api.StepID              `yaml:"initial_step"`
		Requires        []api.FlowID            `yaml:"requires"`
		UnlockedActions []api.Suggestion        `yaml:"unlocked_actions"`
		Steps           []stepFile              `yaml:"steps"`
	}

	stepFile struct {
		Branches      map[string]api.StepID `yaml:"branches"`
		ID            api.StepID            `yaml:"id"`
		CardType      api.CardType          `yaml:"card_type"`
		Prompt        string                `yaml:"prompt"`
		Title         string                `yaml:"title"`
		Subtitle      string                `yaml:"subtitle"`
		Answer        string                `yaml:"answer"`
		Next          api.StepID            `yaml:"next"`
		Default       api.StepID            `yaml:"default"`
		Script        string                `yaml:"script"`
		Targets       []api.StepID          `yaml:"targets"`
		Choices       []api.Choice          `yaml:"choices"`
		Fields        []api.FormField       `yaml:"fields"`
		AgentSteps    []api.AgentStep       `yaml:"agent_steps"`
		Details       []api.Detail          `yaml:"details"`
		Actions       []api.CardAction      `yaml:"actions"`
		NextSteps     []api.Suggestion      `yaml:"next_steps"`
		Revokes       []api.FlowID          `yaml:"revokes"`
		AutoAdvanceMS int                   `yaml:"auto_advance_ms"`
		Terminal      bool                  `yaml:"terminal"`
		Processing    bool                  `yaml:"processing"`
		UrgentOnly    bool                  `yaml:"urgent_only"`
	}
)

const maxFlowFileSize = 256 * 1024

// LoadDir parses every *.yaml and *.yml file in dir as a flow definition.
// Files that fail to parse or validate are logged and skipped
func LoadDir(dir string, sc ScriptChecker) ([]*api.FlowDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading flow directory: %w", err)
	}

	var res []*api.FlowDefinition
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isYAML(name) {
			continue
		}
		path := filepath.Join(dir, name)
		def, err := LoadFile(path, sc)
		if err != nil {
			slog.Warn("Failed to load flow file",
				slog.String("path", path),
				log.Error(err))
			continue
		}
		res = append(res, def)
	}
	return res, nil
}

// LoadFile parses and validates a single flow definition file
func LoadFile(path string, sc ScriptChecker) (*api.FlowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flow file: %w", err)
	}
	if len(data) > maxFlowFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidYAML,
			maxFlowFileSize)
	}
	return ParseFlow(data, sc)
}

// ParseFlow decodes and validates a flow definition from YAML
func ParseFlow(data []byte, sc ScriptChecker) (*api.FlowDefinition, error) {
	var ff flowFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}
	def, err := ff.build()
	if err != nil {
		return nil, err
	}
	if err := Validate(def, sc); err != nil {
		return nil, err
	}
	return def, nil
}

func (ff *flowFile) build() (*api.FlowDefinition, error) {
	fb := builder.NewFlow(ff.ID).
		WithDisplayName(ff.DisplayName).
		WithIcon(ff.Icon).
		WithUnlockedActions(ff.UnlockedActions...)

	seen := map[api.StepID]bool{}
	for _, sf := range ff.Steps {
		if seen[sf.ID] {
			return nil, fmt.Errorf("%w: duplicate step %q", ErrInvalidFlow,
				sf.ID)
		}
		seen[sf.ID] = true
		sb, err := sf.build()
		if err != nil {
			return nil, fmt.Errorf("%w: step %q: %w", ErrInvalidFlow,
				sf.ID, err)
		}
		fb = fb.WithStep(sb)
	}

	if ff.InitialStep != "" {
		fb = fb.WithInitialStep(ff.InitialStep)
	}
	for id, qs := range ff.StepQuestions {
		fb = fb.WithStepQuestions(id, qs...)
	}
	if len(ff.Requires) > 0 {
		required := slices.Clone(ff.Requires)
		fb = fb.WithGuard(func(v api.EngineView) bool {
			for _, id := range required {
				if !v.HasCompleted(id) {
					return false
				}
			}
			return true
		})
	}
	return fb.Build(), nil
}

func (sf *stepFile) build() (*builder.Step, error) {
	ct := sf.CardType
	if ct == "" && sf.Processing {
		ct = api.CardProgress
	}
	sb := builder.NewStep(sf.ID, ct).
		WithPrompt(sf.Prompt).
		WithTitle(sf.Title).
		WithSubtitle(sf.Subtitle).
		WithNextSteps(sf.NextSteps...).
		WithRevokes(sf.Revokes...)

	if sf.Processing {
		sb = sb.WithProcessing()
	}
	for _, c := range sf.Choices {
		sb = sb.WithChoice(c.ID, c.Label, c.Icon)
	}
	for _, f := range sf.Fields {
		sb = sb.WithField(f)
	}
	for _, a := range sf.AgentSteps {
		sb = sb.WithAgentStep(a.Label, a.Detail)
	}
	for _, d := range sf.Details {
		sb = sb.WithDetail(d.Label, d.Value)
	}
	for _, a := range sf.Actions {
		sb = sb.WithAction(a.ID, a.Label)
	}
	if sf.Answer != "" {
		answer := sf.Answer
		sb = sb.WithContent(func(api.FlowState) api.QAContent {
			return api.QAContent{Answer: answer}
		})
	}
	if sf.UrgentOnly {
		sb = sb.WithDataFilter(func(api.FlowState) api.DentistFilter {
			return api.DentistFilter{UrgentOnly: true}
		})
	}
	if sf.AutoAdvanceMS > 0 {
		sb = sb.WithAutoAdvance(
			time.Duration(sf.AutoAdvanceMS) * time.Millisecond,
		)
	}
	if sf.Terminal {
		sb = sb.Terminal()
	}

	switch {
	case sf.Script != "" && (sf.Next != "" || len(sf.Branches) > 0):
		return nil, ErrConflictingNext
	case sf.Next != "" && len(sf.Branches) > 0:
		return nil, ErrConflictingNext
	case sf.Script != "":
		sb = sb.WithScript(sf.Script, sf.Targets...)
	case len(sf.Branches) > 0:
		sb = sb.WithBranch(sf.Branches, sf.Default)
	case sf.Next != "":
		sb = sb.WithNext(sf.Next)
	}
	return sb, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
