package profile

import "fmt"

// Edit is a manual profile update from the presentation layer. Nil fields
// are left untouched. Manual edits bypass the extractor's write-once rule:
// a non-nil field always overwrites.
type Edit struct {
	Name         *string   `json:"name,omitempty"`
	PythonLevel  *string   `json:"python_level,omitempty"`
	AIExposure   *string   `json:"ai_exposure,omitempty"`
	CareerGoal   *string   `json:"career_goal,omitempty"`
	TimePerWeek  *int      `json:"time_per_week,omitempty"`
	CurrentTools *[]string `json:"current_tools,omitempty"`
	Strengths    *[]string `json:"strengths,omitempty"`
	Gaps         *[]string `json:"gaps,omitempty"`
}

var validPythonLevels = map[string]bool{
	"":                true,
	LevelBeginner:     true,
	LevelIntermediate: true,
	LevelAdvanced:     true,
}

var validExposures = map[string]bool{
	"":               true,
	ExposureNone:     true,
	ExposureTheory:   true,
	ExposureProjects: true,
}

// Validate checks enum values and ranges without mutating anything.
func (e Edit) Validate() error {
	if e.PythonLevel != nil && !validPythonLevels[*e.PythonLevel] {
		return fmt.Errorf("invalid python_level %q", *e.PythonLevel)
	}
	if e.AIExposure != nil && !validExposures[*e.AIExposure] {
		return fmt.Errorf("invalid ai_exposure %q", *e.AIExposure)
	}
	if e.TimePerWeek != nil && *e.TimePerWeek < 0 {
		return fmt.Errorf("time_per_week must be >= 0, got %d", *e.TimePerWeek)
	}
	return nil
}

// ApplyEdit overwrites profile fields from a validated edit and re-derives
// diagnosis_done. Returns true if anything changed.
func (p *Profile) ApplyEdit(e Edit) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}

	changed := false
	if e.Name != nil && *e.Name != p.Name {
		p.Name = *e.Name
		changed = true
	}
	if e.PythonLevel != nil && *e.PythonLevel != p.PythonLevel {
		p.PythonLevel = *e.PythonLevel
		changed = true
	}
	if e.AIExposure != nil && *e.AIExposure != p.AIExposure {
		p.AIExposure = *e.AIExposure
		changed = true
	}
	if e.CareerGoal != nil && *e.CareerGoal != p.CareerGoal {
		p.CareerGoal = *e.CareerGoal
		changed = true
	}
	if e.TimePerWeek != nil && *e.TimePerWeek != p.TimePerWeek {
		p.TimePerWeek = *e.TimePerWeek
		changed = true
	}
	if e.CurrentTools != nil {
		p.CurrentTools = append([]string{}, (*e.CurrentTools)...)
		changed = true
	}
	if e.Strengths != nil {
		p.Strengths = append([]string{}, (*e.Strengths)...)
		changed = true
	}
	if e.Gaps != nil {
		p.Gaps = append([]string{}, (*e.Gaps)...)
		changed = true
	}

	if p.RefreshDiagnosis() {
		changed = true
	}
	return changed, nil
}
