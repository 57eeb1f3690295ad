// Package absorb recognizes machine-generated JSON blocks embedded in model
// replies and merges them into the profile. It is the only bridge from
// unstructured model output to structured state, and it is strictly
// best-effort: the model is never forced to satisfy a contract, so every
// parse or shape failure degrades to "no change".
package absorb

import (
	"encoding/json"
	"regexp"
	"strconv"

	"aria/internal/profile"
)

// Kind classifies a generated payload by the shape of its first element.
type Kind int

const (
	Unrecognized Kind = iota
	Roadmap
	Projects
	Tasks
)

func (k Kind) String() string {
	switch k {
	case Roadmap:
		return "roadmap"
	case Projects:
		return "projects"
	case Tasks:
		return "tasks"
	default:
		return "unrecognized"
	}
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")

// Absorb inspects a model reply for an embedded JSON block and, if it looks
// like a roadmap, project list, or weekly task list, replaces the matching
// profile section wholesale. Returns true iff the profile changed.
func Absorb(reply string, p *profile.Profile) bool {
	elements, ok := extractBlock(reply)
	if !ok || len(elements) == 0 {
		return false
	}

	switch Classify(elements[0]) {
	case Roadmap:
		p.ReplaceRoadmap(decodePhases(elements))
		return true
	case Projects:
		p.Projects = decodeProjects(elements)
		return true
	case Tasks:
		p.WeeklyTasks = decodeTasks(elements)
		return true
	default:
		return false
	}
}

// extractBlock pulls the first ```json fenced block from the reply and
// parses it as a JSON array of objects.
func extractBlock(reply string) ([]map[string]any, bool) {
	m := fencedJSON.FindStringSubmatch(reply)
	if m == nil {
		return nil, false
	}
	var elements []map[string]any
	if err := json.Unmarshal([]byte(m[1]), &elements); err != nil {
		return nil, false
	}
	return elements, true
}

// Classify decides the payload kind from a single element's keys. Evaluated
// in fixed priority order (roadmap, projects, tasks); the first predicate
// that holds wins, so an ambiguous element resolves deterministically.
func Classify(el map[string]any) Kind {
	has := func(key string) bool {
		_, ok := el[key]
		return ok
	}
	switch {
	case (has("phase") || has("weeks")) && has("title"):
		return Roadmap
	case has("rank") && has("name") && has("tech"):
		return Projects
	case has("day") && has("task"):
		return Tasks
	default:
		return Unrecognized
	}
}

// The decode helpers are tolerant of the type drift a language model
// produces: numbers where strings are expected and vice versa.

func decodePhases(elements []map[string]any) []profile.Phase {
	phases := make([]profile.Phase, 0, len(elements))
	for _, el := range elements {
		phases = append(phases, profile.Phase{
			Number:    intField(el, "phase"),
			Title:     stringField(el, "title"),
			Weeks:     stringField(el, "weeks"),
			Topics:    stringsField(el, "topics"),
			Milestone: stringField(el, "milestone"),
		})
	}
	return phases
}

func decodeProjects(elements []map[string]any) []profile.Project {
	projects := make([]profile.Project, 0, len(elements))
	for _, el := range elements {
		desc := stringField(el, "description")
		if desc == "" {
			desc = stringField(el, "desc")
		}
		projects = append(projects, profile.Project{
			Rank:        intField(el, "rank"),
			Name:        stringField(el, "name"),
			Tech:        stringsField(el, "tech"),
			Complexity:  stringField(el, "complexity"),
			Description: desc,
			Why:         stringField(el, "why"),
		})
	}
	return projects
}

func decodeTasks(elements []map[string]any) []profile.Task {
	tasks := make([]profile.Task, 0, len(elements))
	for _, el := range elements {
		tasks = append(tasks, profile.Task{
			Day:            stringField(el, "day"),
			Task:           stringField(el, "task"),
			Resource:       stringField(el, "resource"),
			EstimatedHours: floatField(el, "estimated_hours"),
		})
	}
	return tasks
}

func stringField(el map[string]any, key string) string {
	switch v := el[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return ""
	}
}

func stringsField(el map[string]any, key string) []string {
	raw, ok := el[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intField(el map[string]any, key string) int {
	if v, ok := el[key].(float64); ok {
		return int(v)
	}
	return 0
}

func floatField(el map[string]any, key string) float64 {
	if v, ok := el[key].(float64); ok {
		return v
	}
	return 0
}
