// Package extract fills obvious profile fields from user utterances using
// keyword heuristics. It runs silently on every turn and is deliberately
// conservative: a field is written at most once, so under-triggering is
// acceptable and re-running on the same utterance is a no-op.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"aria/internal/profile"
)

// phraseRule maps a trigger phrase to a field value. Rules are evaluated in
// declared order and the first phrase found in the utterance wins.
type phraseRule struct {
	phrase string
	value  string
}

var levelRules = []phraseRule{
	{"beginner", profile.LevelBeginner},
	{"just started", profile.LevelBeginner},
	{"new to", profile.LevelBeginner},
	{"intermediate", profile.LevelIntermediate},
	{"some experience", profile.LevelIntermediate},
	{"advanced", profile.LevelAdvanced},
	{"experienced", profile.LevelAdvanced},
}

var exposureRules = []phraseRule{
	{"never", profile.ExposureNone},
	{"no experience", profile.ExposureNone},
	{"read about", profile.ExposureTheory},
	{"watched", profile.ExposureTheory},
	{"some projects", profile.ExposureProjects},
	{"built", profile.ExposureProjects},
	{"deployed", profile.ExposureProjects},
}

// aiTokens gate the exposure rules: an exposure phrase only counts when the
// utterance is actually talking about AI/ML.
var aiTokens = []string{"ai", "ml", "machine learning", "deep learning"}

var hoursPattern = regexp.MustCompile(`(\d{1,2})\s*(?:hours?|hrs?)\s*(?:a|per)?\s*week`)

// rule is one row of the extraction table. Each row owns a single profile
// field and returns true if it wrote it.
type rule struct {
	name string
	run  func(lower string, p *profile.Profile) bool
}

var rules = []rule{
	{"python_level", extractPythonLevel},
	{"ai_exposure", extractAIExposure},
	{"time_per_week", extractWeeklyHours},
	{"diagnosis_done", func(_ string, p *profile.Profile) bool { return p.RefreshDiagnosis() }},
}

// Extract scans a single user utterance and updates scalar profile fields
// in place. Returns true iff any field changed, signaling the caller to
// persist.
func Extract(utterance string, p *profile.Profile) bool {
	lower := strings.ToLower(utterance)
	changed := false
	for _, r := range rules {
		if r.run(lower, p) {
			changed = true
		}
	}
	return changed
}

func extractPythonLevel(lower string, p *profile.Profile) bool {
	if p.PythonLevel != "" || !strings.Contains(lower, "python") {
		return false
	}
	for _, r := range levelRules {
		if strings.Contains(lower, r.phrase) {
			p.PythonLevel = r.value
			return true
		}
	}
	return false
}

func extractAIExposure(lower string, p *profile.Profile) bool {
	if p.AIExposure != "" || !mentionsAI(lower) {
		return false
	}
	for _, r := range exposureRules {
		if strings.Contains(lower, r.phrase) {
			p.AIExposure = r.value
			return true
		}
	}
	return false
}

func extractWeeklyHours(lower string, p *profile.Profile) bool {
	if p.TimePerWeek != 0 {
		return false
	}
	m := hoursPattern.FindStringSubmatch(lower)
	if m == nil {
		return false
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	p.TimePerWeek = hours
	return true
}

func mentionsAI(lower string) bool {
	for _, tok := range aiTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
