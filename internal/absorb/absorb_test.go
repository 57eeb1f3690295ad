package absorb

import (
	"testing"

	"aria/internal/profile"
)

func TestAbsorb_Roadmap(t *testing.T) {
	p := profile.Empty()
	reply := "Here is your roadmap:\n```json\n[" +
		`{"phase":1,"title":"Python Foundations","weeks":"1-3","topics":["syntax","functions"],"milestone":"CLI tool"},` +
		`{"phase":2,"title":"ML Basics","weeks":"4-7","topics":["numpy","sklearn"],"milestone":"first model"}` +
		"]\n```\nGood luck!"

	if !Absorb(reply, &p) {
		t.Fatal("Absorb returned false, want true")
	}
	if len(p.Roadmap) != 2 {
		t.Fatalf("len(Roadmap) = %d, want 2", len(p.Roadmap))
	}
	if p.Roadmap[0].Title != "Python Foundations" {
		t.Errorf("Roadmap[0].Title = %q", p.Roadmap[0].Title)
	}
	if p.Roadmap[1].Weeks != "4-7" {
		t.Errorf("Roadmap[1].Weeks = %q", p.Roadmap[1].Weeks)
	}
	if len(p.Roadmap[0].Topics) != 2 {
		t.Errorf("Roadmap[0].Topics = %v", p.Roadmap[0].Topics)
	}
}

func TestAbsorb_RoadmapResetsProgress(t *testing.T) {
	p := profile.Empty()
	p.ReplaceRoadmap([]profile.Phase{{Title: "Old A"}, {Title: "Old B"}, {Title: "Old C"}})
	p.CompletePhase(0)
	p.CompletePhase(1)

	reply := "```json\n[{\"phase\":1,\"title\":\"New Start\",\"topics\":[]}]\n```"
	if !Absorb(reply, &p) {
		t.Fatal("Absorb returned false")
	}
	if p.CurrentPhase != 0 {
		t.Errorf("CurrentPhase = %d, want 0 after roadmap replacement", p.CurrentPhase)
	}
	if len(p.CompletedPhases) != 0 {
		t.Errorf("CompletedPhases = %v, want cleared", p.CompletedPhases)
	}
}

func TestAbsorb_Projects(t *testing.T) {
	p := profile.Empty()
	reply := "```json\n[" +
		`{"rank":1,"name":"Chat CLI","tech":["python","requests"],"complexity":"Beginner","description":"A terminal chatbot","why":"practices HTTP"},` +
		`{"rank":2,"name":"RAG Notes","tech":["langchain"],"complexity":"Intermediate","desc":"Notes search","why":"embeddings practice"}` +
		"]\n```"

	if !Absorb(reply, &p) {
		t.Fatal("Absorb returned false")
	}
	if len(p.Projects) != 2 {
		t.Fatalf("len(Projects) = %d, want 2", len(p.Projects))
	}
	if p.Projects[0].Name != "Chat CLI" || p.Projects[0].Rank != 1 {
		t.Errorf("Projects[0] = %+v", p.Projects[0])
	}
	// "desc" is accepted as an alias for "description".
	if p.Projects[1].Description != "Notes search" {
		t.Errorf("Projects[1].Description = %q", p.Projects[1].Description)
	}
}

func TestAbsorb_WeeklyTasks(t *testing.T) {
	p := profile.Empty()
	p.Roadmap = []profile.Phase{{Title: "Keep me"}}
	reply := "Plan:\n```json\n[{\"day\":\"Mon\",\"task\":\"Read ch.1\",\"estimated_hours\":2}]\n```"

	if !Absorb(reply, &p) {
		t.Fatal("Absorb returned false")
	}
	if len(p.WeeklyTasks) != 1 {
		t.Fatalf("len(WeeklyTasks) = %d, want 1", len(p.WeeklyTasks))
	}
	task := p.WeeklyTasks[0]
	if task.Day != "Mon" || task.Task != "Read ch.1" || task.EstimatedHours != 2 {
		t.Errorf("task = %+v", task)
	}
	// Other sections untouched.
	if len(p.Roadmap) != 1 || len(p.Projects) != 0 {
		t.Error("absorbing tasks touched roadmap or projects")
	}
}

func TestAbsorb_TasksReplacedWholesale(t *testing.T) {
	p := profile.Empty()
	p.WeeklyTasks = []profile.Task{{Day: "Mon", Task: "old"}, {Day: "Tue", Task: "old"}}

	reply := "```json\n[{\"day\":\"Wed\",\"task\":\"new plan\"}]\n```"
	if !Absorb(reply, &p) {
		t.Fatal("Absorb returned false")
	}
	if len(p.WeeklyTasks) != 1 || p.WeeklyTasks[0].Day != "Wed" {
		t.Errorf("WeeklyTasks = %+v, want full replace", p.WeeklyTasks)
	}
}

func TestAbsorb_EmptyArray(t *testing.T) {
	p := profile.Empty()
	if Absorb("```json\n[]\n```", &p) {
		t.Error("Absorb returned true for empty array")
	}
}

func TestAbsorb_NoBlock(t *testing.T) {
	p := profile.Empty()
	if Absorb("Just prose, no structured data here.", &p) {
		t.Error("Absorb returned true for reply without a block")
	}
}

func TestAbsorb_MalformedBlock(t *testing.T) {
	p := profile.Empty()
	cases := []string{
		"```json\n{not valid\n```",
		"```json\n{\"a\":1}\n```",           // object, not a sequence
		"```json\n[1,2,3]\n```",             // not objects
		"```json\n[{\"title\":\"x\"}]\n```", // no predicate matches
	}
	for _, reply := range cases {
		if Absorb(reply, &p) {
			t.Errorf("Absorb(%q) = true, want silent no-op", reply)
		}
	}
	if len(p.Roadmap) != 0 && len(p.Projects) != 0 && len(p.WeeklyTasks) != 0 {
		t.Error("malformed input mutated the profile")
	}
}

func TestAbsorb_FirstBlockOnly(t *testing.T) {
	p := profile.Empty()
	reply := "```json\n[{\"day\":\"Mon\",\"task\":\"first\"}]\n```\n" +
		"```json\n[{\"day\":\"Tue\",\"task\":\"second\"}]\n```"

	if !Absorb(reply, &p) {
		t.Fatal("Absorb returned false")
	}
	if len(p.WeeklyTasks) != 1 || p.WeeklyTasks[0].Task != "first" {
		t.Errorf("WeeklyTasks = %+v, want only the first block absorbed", p.WeeklyTasks)
	}
}

func TestClassify_Precedence(t *testing.T) {
	// An element satisfying both the roadmap and the tasks predicates
	// resolves to roadmap: the order is fixed.
	el := map[string]any{
		"phase": float64(1), "title": "Mixed",
		"day": "Mon", "task": "ambiguous",
	}
	if got := Classify(el); got != Roadmap {
		t.Errorf("Classify = %v, want Roadmap", got)
	}
}

func TestClassify_Shapes(t *testing.T) {
	cases := []struct {
		name string
		el   map[string]any
		want Kind
	}{
		{"weeks+title", map[string]any{"weeks": "1-2", "title": "t"}, Roadmap},
		{"phase+title", map[string]any{"phase": float64(1), "title": "t"}, Roadmap},
		{"title only", map[string]any{"title": "t"}, Unrecognized},
		{"project", map[string]any{"rank": float64(1), "name": "n", "tech": []any{}}, Projects},
		{"project missing tech", map[string]any{"rank": float64(1), "name": "n"}, Unrecognized},
		{"task", map[string]any{"day": "Mon", "task": "x"}, Tasks},
		{"empty", map[string]any{}, Unrecognized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.el); got != tc.want {
				t.Errorf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAbsorb_NumericWeeksTolerated(t *testing.T) {
	p := profile.Empty()
	reply := "```json\n[{\"phase\":1,\"title\":\"Start\",\"weeks\":3,\"topics\":[\"a\"]}]\n```"

	if !Absorb(reply, &p) {
		t.Fatal("Absorb returned false")
	}
	if p.Roadmap[0].Weeks != "3" {
		t.Errorf("Weeks = %q, want numeric value coerced to string", p.Roadmap[0].Weeks)
	}
}
