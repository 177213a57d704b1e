package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Heropr/ask-me-anything/pkg/api"
)

type (
	// Tables holds the static lookup data consulted by the repository
	Tables struct {
		ExploreQuestions     map[ExploreTopic][]api.Suggestion       `yaml:"explore_questions"`
		TaskQuestions        map[api.FlowID]map[api.StepID][]string  `yaml:"task_questions"`
		UnlockedActions      map[api.FlowID][]api.Suggestion         `yaml:"unlocked_actions"`
		ExploreAnswers       map[string]string                       `yaml:"explore_answers"`
		ClarificationAnswers map[string]string                       `yaml:"clarification_answers"`
		Fallbacks            Fallbacks                               `yaml:"fallbacks"`
		User                 UserData                                `yaml:"user"`
		Dentists             []api.Dentist                           `yaml:"dentists"`
	}

	// ExploreTopic selects a set of explore-mode suggestions
	ExploreTopic string

	// Fallbacks are the answers given to questions with no canned answer
	Fallbacks struct {
		Explore       string `yaml:"explore"`
		Clarification string `yaml:"clarification"`
	}

	// UserData holds the member stubs
	UserData struct {
		Profile      UserProfile       `yaml:"profile"`
		Appointments []appointmentData `yaml:"appointments"`
		Claims       []Claim           `yaml:"claims"`
		Family       []FamilyMember    `yaml:"family"`
	}

	// UserProfile identifies the signed-in member
	UserProfile struct {
		ID       string `json:"id" yaml:"id"`
		Name     string `json:"name" yaml:"name"`
		MemberID string `json:"member_id" yaml:"member_id"`
	}

	// Appointment is a booked visit
	Appointment struct {
		ID      string      `json:"id"`
		Time    string      `json:"time"`
		Status  string      `json:"status"`
		Dentist api.Dentist `json:"dentist"`
	}

	// Claim is a submitted claim
	Claim struct {
		ID     string `json:"id" yaml:"id"`
		Amount string `json:"amount" yaml:"amount"`
		Status string `json:"status" yaml:"status"`
	}

	// FamilyMember is a dependent on the member's plan
	FamilyMember struct {
		ID           string `json:"id" yaml:"id"`
		Name         string `json:"name" yaml:"name"`
		Relationship string `json:"relationship" yaml:"relationship"`
		MemberID     string `json:"member_id" yaml:"member_id"`
	}

	appointmentData struct {
		ID        string `yaml:"id"`
		Time      string `yaml:"time"`
		Status    string `yaml:"status"`
		DentistID int    `yaml:"dentist_id"`
	}
)

const (
	TopicInitial  ExploreTopic = "initial"
	TopicCoverage ExploreTopic = "coverage"
	TopicCost     ExploreTopic = "cost"
)

//go:embed data/content.yaml
var defaultContent []byte

// DefaultTables parses the content tables bundled with the binary
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultContent)
}

// ParseTables decodes content tables from YAML
func ParseTables(data []byte) (*Tables, error) {
	var res Tables
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}
	return &res, nil
}

func (t *Tables) dentist(id int) (api.Dentist, bool) {
	for _, d := range t.Dentists {
		if d.ID == id {
			return d, true
		}
	}
	return api.Dentist{}, false
}
