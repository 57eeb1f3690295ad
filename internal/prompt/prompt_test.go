package prompt

import (
	"strings"
	"testing"

	"aria/internal/persona"
	"aria/internal/profile"
)

func TestBuild_IncludesPersonaInstruction(t *testing.T) {
	p := profile.Empty()
	got := Build(p, persona.Reviewer)

	rev := persona.Get(persona.Reviewer)
	if !strings.Contains(got, rev.Instruction) {
		t.Error("system prompt missing active persona instruction")
	}
	if !strings.Contains(got, "[Current Mode: "+rev.Name+"]") {
		t.Error("system prompt missing mode header")
	}
}

func TestBuild_UnknownFieldsStatedAsUnknown(t *testing.T) {
	got := Build(profile.Empty(), persona.Default)

	for _, want := range []string{"Python level: unknown", "AI exposure: unknown", "Career goal: unknown"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuild_KnownProfileRendered(t *testing.T) {
	p := profile.Empty()
	p.Name = "Sam"
	p.PythonLevel = profile.LevelIntermediate
	p.TimePerWeek = 8
	p.CurrentTools = []string{"vscode", "jupyter"}
	p.Roadmap = []profile.Phase{{Title: "Foundations"}, {Title: "ML Basics"}}
	p.CurrentPhase = 1

	got := Build(p, persona.Default)
	for _, want := range []string{
		"Name: Sam",
		"Python level: intermediate",
		"Time per week: 8 hours",
		"Current tools: vscode, jupyter",
		"currently on phase 2 (ML Basics)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuild_DiagnosisGatesOnboarding(t *testing.T) {
	p := profile.Empty()
	before := Build(p, persona.Default)
	if !strings.Contains(before, "ask short diagnostic questions") {
		t.Error("pre-diagnosis prompt should instruct diagnostic questioning")
	}

	p.PythonLevel = profile.LevelBeginner
	p.AIExposure = profile.ExposureNone
	p.RefreshDiagnosis()
	after := Build(p, persona.Default)
	if !strings.Contains(after, "Do not re-ask diagnostic questions") {
		t.Error("post-diagnosis prompt should suppress re-diagnosis")
	}
}

func TestBuild_ContainsOutputSchemas(t *testing.T) {
	got := Build(profile.Empty(), persona.Default)
	for _, frag := range []string{`"phase": 1`, `"rank": 1`, `"day": "Mon"`, "```json"} {
		if !strings.Contains(got, frag) {
			t.Errorf("prompt missing schema fragment %q", frag)
		}
	}
}
