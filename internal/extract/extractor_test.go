package extract

import (
	"fmt"
	"testing"

	"aria/internal/profile"
)

func TestExtract_CompleteBeginner(t *testing.T) {
	p := profile.Empty()

	changed := Extract("I'm a complete beginner with python, never touched AI", &p)
	if !changed {
		t.Fatal("Extract returned false, want true")
	}
	if p.PythonLevel != profile.LevelBeginner {
		t.Errorf("PythonLevel = %q, want beginner", p.PythonLevel)
	}
	if p.AIExposure != profile.ExposureNone {
		t.Errorf("AIExposure = %q, want none", p.AIExposure)
	}
	if !p.DiagnosisDone {
		t.Error("DiagnosisDone = false, want true once both fields are set")
	}
}

func TestExtract_WeeklyHours(t *testing.T) {
	cases := []struct {
		utterance string
		want      int
	}{
		{"I can do about 8 hours a week", 8},
		{"maybe 5 hrs per week", 5},
		{"10 hours a week sounds right", 10},
		{"I have 12hrs a week free", 12},
	}
	for _, tc := range cases {
		t.Run(tc.utterance, func(t *testing.T) {
			p := profile.Empty()
			if !Extract(tc.utterance, &p) {
				t.Fatal("Extract returned false")
			}
			if p.TimePerWeek != tc.want {
				t.Errorf("TimePerWeek = %d, want %d", p.TimePerWeek, tc.want)
			}
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	p := profile.Empty()
	utterance := "I'm new to python and I've read about machine learning, 6 hours per week"

	if !Extract(utterance, &p) {
		t.Fatal("first Extract returned false")
	}
	if Extract(utterance, &p) {
		t.Error("second Extract returned true, want no-op on already-updated profile")
	}
}

func TestExtract_WriteOnce(t *testing.T) {
	p := profile.Empty()

	Extract("I'm a python beginner", &p)
	if p.PythonLevel != profile.LevelBeginner {
		t.Fatalf("setup failed: PythonLevel = %q", p.PythonLevel)
	}

	if Extract("actually I'm quite advanced with python", &p) {
		t.Error("Extract overwrote an already-set field")
	}
	if p.PythonLevel != profile.LevelBeginner {
		t.Errorf("PythonLevel = %q, want first match to stick", p.PythonLevel)
	}
}

func TestExtract_RequiresCoOccurrence(t *testing.T) {
	p := profile.Empty()

	// Level phrase without the "python" token.
	if Extract("I'm a total beginner at chess", &p) {
		t.Error("level rule fired without python token")
	}

	// Exposure phrase without an AI/ML token.
	if Extract("I never eat breakfast", &p) {
		t.Error("exposure rule fired without AI token")
	}

	if p.PythonLevel != "" || p.AIExposure != "" {
		t.Errorf("fields set unexpectedly: %+v", p)
	}
}

func TestExtract_LevelPhrasePriority(t *testing.T) {
	// "beginner" appears before "advanced" in the rule table, so an
	// utterance containing both resolves to beginner.
	p := profile.Empty()
	Extract("I was advanced in java but a beginner with python", &p)
	if p.PythonLevel != profile.LevelBeginner {
		t.Errorf("PythonLevel = %q, want beginner (first rule in table wins)", p.PythonLevel)
	}
}

// TestLevelRules enumerates every row of the level table independently.
func TestLevelRules(t *testing.T) {
	for _, r := range levelRules {
		t.Run(r.phrase, func(t *testing.T) {
			p := profile.Empty()
			utterance := fmt.Sprintf("when it comes to python I am %s it", r.phrase)
			if !Extract(utterance, &p) {
				t.Fatalf("rule %q did not fire", r.phrase)
			}
			if p.PythonLevel != r.value {
				t.Errorf("PythonLevel = %q, want %q", p.PythonLevel, r.value)
			}
		})
	}
}

// TestExposureRules enumerates every row of the exposure table independently.
func TestExposureRules(t *testing.T) {
	for _, r := range exposureRules {
		t.Run(r.phrase, func(t *testing.T) {
			p := profile.Empty()
			utterance := fmt.Sprintf("with machine learning I have %s things", r.phrase)
			if !Extract(utterance, &p) {
				t.Fatalf("rule %q did not fire", r.phrase)
			}
			if p.AIExposure != r.value {
				t.Errorf("AIExposure = %q, want %q", p.AIExposure, r.value)
			}
		})
	}
}

func TestExtract_DiagnosisMonotonic(t *testing.T) {
	p := profile.Empty()

	Extract("I'm a python beginner", &p)
	if p.DiagnosisDone {
		t.Fatal("diagnosis done with only one field set")
	}

	Extract("I've built some ml projects", &p)
	if !p.DiagnosisDone {
		t.Fatal("diagnosis not done with both fields set")
	}

	// Nothing may flip it back.
	Extract("forget everything about python", &p)
	if !p.DiagnosisDone {
		t.Error("diagnosis_done reverted")
	}
}

func TestExtract_HoursOnlyTwoDigits(t *testing.T) {
	p := profile.Empty()
	// The capture is 1-2 digits; "100 hours a week" matches "00" within the
	// original heuristic. Mirror the conservative capture instead.
	Extract("about 15 hours per week", &p)
	if p.TimePerWeek != 15 {
		t.Errorf("TimePerWeek = %d, want 15", p.TimePerWeek)
	}
}

func TestExtract_NoMatchNoChange(t *testing.T) {
	p := profile.Empty()
	if Extract("what should I learn first?", &p) {
		t.Error("Extract returned true for utterance with no signals")
	}
}
