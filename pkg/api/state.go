package api

import "slices"

type (
	// FlowState is the runtime state of the single active flow. The engine
	// replaces it wholesale on every update and hands out clones only
	FlowState struct {
		Data           map[string]any `json:"data"`
		SelectedEntity Entity         `json:"selected_entity,omitempty"`
		FlowID         FlowID         `json:"flow_id"`
		CurrentStep    StepID         `json:"current_step"`
		StepHistory    []StepID       `json:"step_history"`
		IsComplete     bool           `json:"is_complete"`
		IsProcessing   bool           `json:"is_processing"`
	}

	// Entity is a selectable domain object, such as a dentist, keyed by
	// field name
	Entity map[string]any
)

// NewFlowState returns the initial state of a flow entering its first step
func NewFlowState(id FlowID, initial StepID) *FlowState {
	return &FlowState{
		FlowID:      id,
		CurrentStep: initial,
		Data:        map[string]any{},
		StepHistory: []StepID{},
	}
}

// Clone returns a deep copy of the state
func (s *FlowState) Clone() *FlowState {
	if s == nil {
		return nil
	}
	res := *s
	res.Data = cloneMap(s.Data)
	res.SelectedEntity = s.SelectedEntity.Clone()
	res.StepHistory = slices.Clone(s.StepHistory)
	if res.StepHistory == nil {
		res.StepHistory = []StepID{}
	}
	return &res
}

// SetData returns a copy of the state with the provided values merged into
// its accumulated data
func (s *FlowState) SetData(values map[string]any) *FlowState {
	res := s.Clone()
	for k, v := range values {
		res.Data[k] = cloneValue(v)
	}
	return res
}

// SetCurrentStep returns a copy of the state positioned at the given step
func (s *FlowState) SetCurrentStep(id StepID) *FlowState {
	res := s.Clone()
	res.CurrentStep = id
	return res
}

// PushHistory returns a copy of the state with its current step appended
// to the step history
func (s *FlowState) PushHistory() *FlowState {
	res := s.Clone()
	res.StepHistory = append(res.StepHistory, s.CurrentStep)
	return res
}

// PopHistory returns a copy of the state moved back to its most recently
// visited step. The second result is false when the history is empty
func (s *FlowState) PopHistory() (*FlowState, bool) {
	if len(s.StepHistory) == 0 {
		return s, false
	}
	res := s.Clone()
	last := len(res.StepHistory) - 1
	res.CurrentStep = res.StepHistory[last]
	res.StepHistory = res.StepHistory[:last]
	return res, true
}

// SetSelectedEntity returns a copy of the state with the entity selected
func (s *FlowState) SetSelectedEntity(e Entity) *FlowState {
	res := s.Clone()
	res.SelectedEntity = e.Clone()
	return res
}

// SetProcessing returns a copy of the state with the processing flag set
func (s *FlowState) SetProcessing(p bool) *FlowState {
	res := s.Clone()
	res.IsProcessing = p
	return res
}

// SetComplete returns a copy of the state marked complete
func (s *FlowState) SetComplete() *FlowState {
	res := s.Clone()
	res.IsComplete = true
	return res
}

// DataString returns the named data value when it is a string
func (s FlowState) DataString(key string) string {
	if v, ok := s.Data[key].(string); ok {
		return v
	}
	return ""
}

// Clone returns a deep copy of the entity
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	return Entity(cloneMap(e))
}

// Name returns the entity's display name, falling back to its ID
func (e Entity) Name() string {
	if n, ok := e["name"].(string); ok && n != "" {
		return n
	}
	if id, ok := e["id"]; ok && id != nil {
		return toString(id)
	}
	return ""
}

// ID returns the entity's identifier rendered as a string
func (e Entity) ID() string {
	if id, ok := e["id"]; ok && id != nil {
		return toString(id)
	}
	return ""
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = cloneValue(v)
	}
	return res
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case Entity:
		return v.Clone()
	case []any:
		res := make([]any, len(v))
		for i, e := range v {
			res[i] = cloneValue(e)
		}
		return res
	case []string:
		return slices.Clone(v)
	default:
		return v
	}
}
