package api

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// RenderContext carries the values available to placeholder tokens in
// flow content
type RenderContext struct {
	Entity Entity
	Choice *Choice
	Data   map[string]any
	Random func() string
}

var placeholder = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z0-9_]+)*\}`)

var renderRoots = map[string]bool{
	"entity":   true,
	"formData": true,
	"data":     true,
	"choice":   true,
}

// NewRenderContext builds a context from a flow state and the choice that
// triggered the current interaction, if any
func NewRenderContext(st *FlowState, ch *Choice) RenderContext {
	res := RenderContext{Choice: ch}
	if st != nil {
		res.Entity = st.SelectedEntity
		res.Data = st.Data
	}
	return res
}

// Render replaces the placeholder tokens in s. Supported tokens are
// {entity}, {entity.<field>}, {formData.<field>}, {data.<key>},
// {choice.id}, {choice.label}, and {random}. Tokens that cannot be
// resolved are left verbatim
func (c RenderContext) Render(s string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	var doc []byte
	return placeholder.ReplaceAllStringFunc(s, func(tok string) string {
		path := tok[1 : len(tok)-1]
		switch path {
		case "random":
			if c.Random == nil {
				return tok
			}
			return c.Random()
		case "entity":
			if name := c.Entity.Name(); name != "" {
				return name
			}
			return tok
		}
		root, _, ok := strings.Cut(path, ".")
		if !ok || !renderRoots[root] {
			return tok
		}
		if doc == nil {
			doc = c.document()
		}
		res := gjson.GetBytes(doc, path)
		if !res.Exists() || res.IsObject() || res.IsArray() {
			return tok
		}
		return res.String()
	})
}

// RenderDetails renders every value in the provided details
func (c RenderContext) RenderDetails(details []Detail) []Detail {
	if details == nil {
		return nil
	}
	res := make([]Detail, len(details))
	for i, d := range details {
		res[i] = Detail{Label: d.Label, Value: c.Render(d.Value)}
	}
	return res
}

// RenderAgentSteps renders the detail text of every agent step
func (c RenderContext) RenderAgentSteps(steps []AgentStep) []AgentStep {
	res := make([]AgentStep, len(steps))
	for i, s := range steps {
		res[i] = AgentStep{Label: c.Render(s.Label), Detail: c.Render(s.Detail)}
	}
	return res
}

func (c RenderContext) document() []byte {
	doc := map[string]any{
		"entity":   c.Entity,
		"formData": c.Data,
		"data":     c.Data,
	}
	if c.Choice != nil {
		doc["choice"] = c.Choice
	}
	res, err := json.Marshal(doc)
	if err != nil {
		return []byte("{}")
	}
	return res
}

func toString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
