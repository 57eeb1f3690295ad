package profile

import (
	"errors"
	"fmt"
)

// Python level values. The empty string means "not yet known".
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// AI/ML exposure values. The empty string means "not yet known".
const (
	ExposureNone     = "none"
	ExposureTheory   = "theory_only"
	ExposureProjects = "some_projects"
)

// ErrPhaseOutOfRange is returned when a phase index is outside the current roadmap.
var ErrPhaseOutOfRange = errors.New("phase index out of range")

// Profile is the single persisted document describing everything the
// assistant has learned about the user. It is built incrementally from
// conversation; no field is pre-seeded.
type Profile struct {
	Name            string    `json:"name"`
	PythonLevel     string    `json:"python_level"`
	AIExposure      string    `json:"ai_exposure"`
	CareerGoal      string    `json:"career_goal"`
	TimePerWeek     int       `json:"time_per_week"`
	CurrentTools    []string  `json:"current_tools"`
	Strengths       []string  `json:"strengths"`
	Gaps            []string  `json:"gaps"`
	DiagnosisDone   bool      `json:"diagnosis_done"`
	Roadmap         []Phase   `json:"roadmap"`
	CurrentPhase    int       `json:"current_phase"`
	CompletedPhases []int     `json:"completed_phases"`
	Projects        []Project `json:"projects"`
	WeeklyTasks     []Task    `json:"weekly_tasks"`
	LastUpdated     string    `json:"last_updated"`
}

// Phase is one stage of the generated learning roadmap.
type Phase struct {
	Number    int      `json:"phase,omitempty"`
	Title     string   `json:"title"`
	Weeks     string   `json:"weeks,omitempty"`
	Topics    []string `json:"topics"`
	Milestone string   `json:"milestone,omitempty"`
}

// Project is one suggested portfolio project.
type Project struct {
	Rank        int      `json:"rank"`
	Name        string   `json:"name"`
	Tech        []string `json:"tech"`
	Complexity  string   `json:"complexity"`
	Description string   `json:"description"`
	Why         string   `json:"why"`
}

// Task is one entry in the generated weekly plan.
type Task struct {
	Day            string  `json:"day"`
	Task           string  `json:"task"`
	Resource       string  `json:"resource,omitempty"`
	EstimatedHours float64 `json:"estimated_hours,omitempty"`
}

// Empty returns the canonical empty profile. Sequences are non-nil so the
// persisted document always contains every field of the schema.
func Empty() Profile {
	return Profile{
		CurrentTools:    []string{},
		Strengths:       []string{},
		Gaps:            []string{},
		Roadmap:         []Phase{},
		CompletedPhases: []int{},
		Projects:        []Project{},
		WeeklyTasks:     []Task{},
	}
}

// ReplaceRoadmap swaps in a new roadmap wholesale. Phase-progress state is
// only meaningful relative to the roadmap it was recorded against, so any
// replacement resets it.
func (p *Profile) ReplaceRoadmap(phases []Phase) {
	p.Roadmap = phases
	p.CurrentPhase = 0
	p.CompletedPhases = []int{}
}

// CompletePhase marks phase i as done and advances the current phase.
// The index must refer to a phase of the current roadmap.
func (p *Profile) CompletePhase(i int) error {
	if i < 0 || i >= len(p.Roadmap) {
		return fmt.Errorf("%w: %d (roadmap has %d phases)", ErrPhaseOutOfRange, i, len(p.Roadmap))
	}
	done := false
	for _, d := range p.CompletedPhases {
		if d == i {
			done = true
			break
		}
	}
	if !done {
		p.CompletedPhases = append(p.CompletedPhases, i)
	}
	next := i + 1
	if next > len(p.Roadmap)-1 {
		next = len(p.Roadmap) - 1
	}
	p.CurrentPhase = next
	return nil
}

// refreshDiagnosis flips diagnosis_done once both key fields are known.
// The flag is monotonic: it is never cleared outside a full reset.
func (p *Profile) refreshDiagnosis() {
	if !p.DiagnosisDone && p.PythonLevel != "" && p.AIExposure != "" {
		p.DiagnosisDone = true
	}
}

// RefreshDiagnosis is the exported form used by the extractor after its
// field rules have run.
func (p *Profile) RefreshDiagnosis() bool {
	before := p.DiagnosisDone
	p.refreshDiagnosis()
	return p.DiagnosisDone != before
}
