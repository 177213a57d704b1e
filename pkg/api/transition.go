package api

import (
	"maps"
	"slices"
)

type (
	// Transition resolves the step that follows an interaction. It is a
	// closed set of variants: Literal, Computed, Branch, and Scripted
	Transition interface {
		// Targets returns every step the transition can resolve to
		Targets() []StepID
		transition()
	}

	// Literal always moves to the named step
	Literal StepID

	// Computed resolves the next step with a pure function of the choice
	// and the current state. Possible declares the function's range so the
	// flow graph can be validated
	Computed struct {
		Func     func(*Choice, FlowState) StepID
		Possible []StepID
	}

	// Branch selects the next step by the chosen option's ID, falling back
	// to Default when no case matches
	Branch struct {
		Cases   map[string]StepID
		Default StepID
	}

	// Scripted resolves the next step by evaluating a Lua chunk. Possible
	// declares the script's range so the flow graph can be validated
	Scripted struct {
		Source   string
		Possible []StepID
	}
)

// Targets returns the literal's step
func (l Literal) Targets() []StepID {
	if l == "" {
		return nil
	}
	return []StepID{StepID(l)}
}

// Targets returns the declared range of the function
func (c Computed) Targets() []StepID {
	return slices.Clone(c.Possible)
}

// Resolve calls the transition function. A nil function resolves to no step
func (c Computed) Resolve(ch *Choice, st FlowState) StepID {
	if c.Func == nil {
		return ""
	}
	return c.Func(ch, st)
}

// Targets returns every case target and the default, sorted and unique
func (b Branch) Targets() []StepID {
	res := slices.Collect(maps.Values(b.Cases))
	if b.Default != "" {
		res = append(res, b.Default)
	}
	slices.Sort(res)
	return slices.Compact(res)
}

// Resolve picks the case matching the choice ID, or Default
func (b Branch) Resolve(ch *Choice) StepID {
	if ch != nil {
		if to, ok := b.Cases[ch.ID]; ok {
			return to
		}
	}
	return b.Default
}

// Targets returns the declared range of the script
func (s Scripted) Targets() []StepID {
	return slices.Clone(s.Possible)
}

func (Literal) transition()  {}
func (Computed) transition() {}
func (Branch) transition()   {}
func (Scripted) transition() {}
