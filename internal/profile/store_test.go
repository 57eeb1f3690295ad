package profile

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"aria/internal/storage"
)

// --- Mock document store ---

type mockDocs struct {
	data map[string]string

	saveErr error
}

func newMockDocs() *mockDocs {
	return &mockDocs{data: make(map[string]string)}
}

func (m *mockDocs) SaveProfileDocument(sessionID, document string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[sessionID] = document
	return nil
}

func (m *mockDocs) GetProfileDocument(sessionID string) (string, error) {
	doc, ok := m.data[sessionID]
	if !ok {
		return "", storage.ErrNotFound
	}
	return doc, nil
}

func (m *mockDocs) DeleteProfileDocument(sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// --- Tests ---

func TestLoadOrDefault_Empty(t *testing.T) {
	s := NewStore(newMockDocs())

	p := s.LoadOrDefault()
	if p.PythonLevel != "" || p.DiagnosisDone {
		t.Errorf("expected canonical empty profile, got %+v", p)
	}
	if p.Roadmap == nil || p.CompletedPhases == nil || p.Projects == nil || p.WeeklyTasks == nil {
		t.Error("expected non-nil empty sequences in empty profile")
	}
}

func TestLoadOrDefault_ForwardFillsOlderDocument(t *testing.T) {
	docs := newMockDocs()
	// A document written by an older build that predates several fields.
	docs.data[DefaultSession] = `{"name":"Alex","python_level":"beginner"}`
	s := NewStore(docs)

	p := s.LoadOrDefault()
	if p.Name != "Alex" || p.PythonLevel != LevelBeginner {
		t.Errorf("stored fields lost: %+v", p)
	}
	if p.CurrentTools == nil || len(p.CurrentTools) != 0 {
		t.Errorf("current_tools = %v, want forward-filled empty list", p.CurrentTools)
	}
	if p.WeeklyTasks == nil {
		t.Error("weekly_tasks not forward-filled")
	}
}

func TestLoadOrDefault_MalformedDocument(t *testing.T) {
	docs := newMockDocs()
	docs.data[DefaultSession] = `{not json`
	s := NewStore(docs)

	p := s.LoadOrDefault()
	if p.Name != "" || len(p.Roadmap) != 0 {
		t.Errorf("expected empty profile for malformed document, got %+v", p)
	}
}

func TestSave_StampsLastUpdated(t *testing.T) {
	docs := newMockDocs()
	now := time.Date(2025, 7, 14, 9, 30, 0, 0, time.UTC)
	s := NewStoreWithClock(docs, fixedClock{now: now})

	p := Empty()
	p.Name = "Sam"
	if err := s.Save(&p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if p.LastUpdated != "2025-07-14T09:30:00Z" {
		t.Errorf("LastUpdated = %q, want RFC 3339 stamp", p.LastUpdated)
	}
	if !strings.Contains(docs.data[DefaultSession], `"last_updated":"2025-07-14T09:30:00Z"`) {
		t.Errorf("persisted document missing timestamp: %s", docs.data[DefaultSession])
	}
}

func TestSave_PersistsWholeSchema(t *testing.T) {
	docs := newMockDocs()
	s := NewStore(docs)

	p := Empty()
	if err := s.Save(&p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(docs.data[DefaultSession]), &raw); err != nil {
		t.Fatalf("unmarshalling persisted document: %v", err)
	}
	for _, key := range []string{
		"name", "python_level", "ai_exposure", "career_goal", "time_per_week",
		"current_tools", "strengths", "gaps", "diagnosis_done", "roadmap",
		"current_phase", "completed_phases", "projects", "weekly_tasks", "last_updated",
	} {
		if _, ok := raw[key]; !ok {
			t.Errorf("persisted document missing field %q", key)
		}
	}
}

func TestReset_ReturnsEmptySchema(t *testing.T) {
	docs := newMockDocs()
	s := NewStore(docs)

	p := Empty()
	p.Name = "Sam"
	p.PythonLevel = LevelAdvanced
	p.DiagnosisDone = true
	if err := s.Save(&p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got.Name != "" || got.PythonLevel != "" || got.DiagnosisDone {
		t.Errorf("Reset returned non-empty profile: %+v", got)
	}

	// A subsequent load produces the same empty schema.
	reloaded := s.LoadOrDefault()
	if reloaded.Name != "" || reloaded.DiagnosisDone || len(reloaded.Roadmap) != 0 {
		t.Errorf("load after reset = %+v, want empty schema", reloaded)
	}
}

func TestCompletePhase(t *testing.T) {
	p := Empty()
	p.ReplaceRoadmap([]Phase{
		{Title: "Foundations"}, {Title: "Core Python"}, {Title: "ML Basics"},
		{Title: "Deep Learning"}, {Title: "Agents"},
	})

	if err := p.CompletePhase(2); err != nil {
		t.Fatalf("CompletePhase(2): %v", err)
	}
	if len(p.CompletedPhases) != 1 || p.CompletedPhases[0] != 2 {
		t.Errorf("CompletedPhases = %v, want [2]", p.CompletedPhases)
	}
	if p.CurrentPhase != 3 {
		t.Errorf("CurrentPhase = %d, want 3", p.CurrentPhase)
	}

	// Completing the same phase again is idempotent for the set.
	if err := p.CompletePhase(2); err != nil {
		t.Fatalf("CompletePhase(2) again: %v", err)
	}
	if len(p.CompletedPhases) != 1 {
		t.Errorf("CompletedPhases = %v, want no duplicate", p.CompletedPhases)
	}
}

func TestCompletePhase_LastPhaseClamps(t *testing.T) {
	p := Empty()
	p.ReplaceRoadmap([]Phase{{Title: "Only"}, {Title: "Final"}})
	p.CurrentPhase = 1

	if err := p.CompletePhase(1); err != nil {
		t.Fatalf("CompletePhase(1): %v", err)
	}
	if p.CurrentPhase != 1 {
		t.Errorf("CurrentPhase = %d, want clamped to last index", p.CurrentPhase)
	}
}

func TestCompletePhase_OutOfRange(t *testing.T) {
	p := Empty()
	p.ReplaceRoadmap([]Phase{{Title: "Only"}})

	for _, idx := range []int{-1, 1, 99} {
		if err := p.CompletePhase(idx); !errors.Is(err, ErrPhaseOutOfRange) {
			t.Errorf("CompletePhase(%d) = %v, want ErrPhaseOutOfRange", idx, err)
		}
	}
}

func TestReplaceRoadmap_ResetsProgress(t *testing.T) {
	p := Empty()
	p.ReplaceRoadmap([]Phase{{Title: "A"}, {Title: "B"}, {Title: "C"}})
	p.CompletePhase(0)
	p.CompletePhase(1)

	p.ReplaceRoadmap([]Phase{{Title: "New A"}, {Title: "New B"}})
	if p.CurrentPhase != 0 {
		t.Errorf("CurrentPhase = %d, want 0 after roadmap replacement", p.CurrentPhase)
	}
	if len(p.CompletedPhases) != 0 {
		t.Errorf("CompletedPhases = %v, want cleared", p.CompletedPhases)
	}
}

func TestApplyEdit_OverwritesWriteOnceFields(t *testing.T) {
	p := Empty()
	p.PythonLevel = LevelBeginner

	level := LevelAdvanced
	changed, err := p.ApplyEdit(Edit{PythonLevel: &level})
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if !changed {
		t.Error("ApplyEdit returned changed=false")
	}
	if p.PythonLevel != LevelAdvanced {
		t.Errorf("PythonLevel = %q, want manual edit to overwrite", p.PythonLevel)
	}
}

func TestApplyEdit_DerivesDiagnosis(t *testing.T) {
	p := Empty()
	level := LevelIntermediate
	exposure := ExposureTheory

	changed, err := p.ApplyEdit(Edit{PythonLevel: &level, AIExposure: &exposure})
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if !changed || !p.DiagnosisDone {
		t.Errorf("diagnosis_done = %v, want true once both fields set", p.DiagnosisDone)
	}
}

func TestApplyEdit_Invalid(t *testing.T) {
	p := Empty()

	bad := "wizard"
	if _, err := p.ApplyEdit(Edit{PythonLevel: &bad}); err == nil {
		t.Error("expected error for invalid python_level")
	}

	hours := -3
	if _, err := p.ApplyEdit(Edit{TimePerWeek: &hours}); err == nil {
		t.Error("expected error for negative time_per_week")
	}
}

func TestApplyEdit_NoChanges(t *testing.T) {
	p := Empty()
	changed, err := p.ApplyEdit(Edit{})
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if changed {
		t.Error("empty edit reported changed=true")
	}
}
