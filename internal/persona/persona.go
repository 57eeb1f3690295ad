// Package persona maps conversational cues to one of a fixed set of
// assistant modes. The active persona conditions the system prompt sent to
// the model; selection itself never looks at model output.
package persona

import "strings"

// ID identifies a persona in the registry.
type ID string

const (
	Instructor  ID = "instructor"
	Coach       ID = "coach"
	Interviewer ID = "interviewer"
	Reviewer    ID = "reviewer"
	Motivator   ID = "motivator"
)

// Default is the persona active at session start.
const Default = Instructor

// Persona is one conversational mode. Color is a presentation token only;
// nothing in the core reads it.
type Persona struct {
	ID          ID
	Name        string
	Description string
	Color       string
	Triggers    []string
	Instruction string
}

// registry order matters: Select walks it top to bottom and the first
// persona with a matching trigger wins.
var registry = []Persona{
	{
		ID:          Instructor,
		Name:        "Instructor",
		Description: "teaches concepts step by step",
		Color:       "cyan",
		Triggers:    []string{"explain", "teach", "how does", "what is", "lesson"},
		Instruction: "Teach patiently. Break concepts into small steps, check understanding before moving on, and prefer concrete runnable examples over theory.",
	},
	{
		ID:          Coach,
		Name:        "Career Coach",
		Description: "advises on goals, jobs and portfolio",
		Color:       "purple",
		Triggers:    []string{"career", "job", "hire", "salary", "portfolio", "resume"},
		Instruction: "Give honest, specific career advice. Tie every recommendation to the user's actual profile and the current job market; no platitudes.",
	},
	{
		ID:          Interviewer,
		Name:        "Interviewer",
		Description: "drills with questions and challenges",
		Color:       "orange",
		Triggers:    []string{"quiz", "challenge", "test me", "interview", "practice question"},
		Instruction: "Act as a technical interviewer. Ask one question at a time at the user's exact level, wait for their answer, then give precise feedback.",
	},
	{
		ID:          Reviewer,
		Name:        "Code Reviewer",
		Description: "reviews code and debugging approach",
		Color:       "green",
		Triggers:    []string{"review my", "my code", "debug", "error", "traceback", "stack trace"},
		Instruction: "Review like a senior engineer: point out the most important issue first, show the corrected code, and explain the underlying principle once.",
	},
	{
		ID:          Motivator,
		Name:        "Motivator",
		Description: "re-energizes when progress stalls",
		Color:       "pink",
		Triggers:    []string{"stuck", "frustrated", "give up", "overwhelmed", "demotivated", "tired"},
		Instruction: "The user is struggling. Acknowledge it briefly, shrink the next step until it feels trivial, and remind them of concrete progress already made.",
	},
}

// Select returns the persona triggered by the utterance, or current when no
// trigger phrase matches. There is always an active persona.
func Select(utterance string, current ID) ID {
	lower := strings.ToLower(utterance)
	for _, p := range registry {
		for _, trigger := range p.Triggers {
			if strings.Contains(lower, trigger) {
				return p.ID
			}
		}
	}
	return current
}

// Get returns the persona for id, falling back to the default for unknown ids.
func Get(id ID) Persona {
	for _, p := range registry {
		if p.ID == id {
			return p
		}
	}
	return Get(Default)
}

// All returns the registry in its declared order.
func All() []Persona {
	out := make([]Persona, len(registry))
	copy(out, registry)
	return out
}
