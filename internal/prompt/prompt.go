// Package prompt assembles the system instruction sent to the chat model.
// The instruction carries the assistant's identity, the active persona's
// behavior, a snapshot of everything known about the learner, and the exact
// JSON shapes to use when emitting a roadmap, project list, or weekly plan.
package prompt

import (
	"fmt"
	"strings"

	"aria/internal/persona"
	"aria/internal/profile"
)

const identity = `You are ARIA, an AI career guide for people learning Python and moving into AI/ML roles. You run fully locally; be direct, specific, and practical. Keep answers focused on the learner in front of you.`

// Schemas the model must follow when asked for structured content. The
// absorber only recognizes these shapes, so the instruction spells them out
// verbatim.
const roadmapSchema = `[{"phase": 1, "title": "...", "weeks": "1-3", "topics": ["..."], "milestone": "..."}]`
const projectsSchema = `[{"rank": 1, "name": "...", "tech": ["..."], "complexity": "Beginner|Intermediate|Advanced", "description": "...", "why": "..."}]`
const tasksSchema = `[{"day": "Mon", "task": "...", "resource": "...", "estimated_hours": 2}]`

// Build returns the system instruction for one turn, conditioned on the
// current profile and the active persona.
func Build(p profile.Profile, active persona.ID) string {
	var sb strings.Builder

	sb.WriteString(identity)

	pers := persona.Get(active)
	sb.WriteString("\n\n[Current Mode: ")
	sb.WriteString(pers.Name)
	sb.WriteString("]\n")
	sb.WriteString(pers.Instruction)

	sb.WriteString("\n\n[Learner Profile]\n")
	sb.WriteString(profileSummary(p))

	sb.WriteString("\n[Structured Output]\n")
	sb.WriteString("When the learner asks for a roadmap, project ideas, or a weekly plan, include exactly one fenced ```json block with a JSON array in one of these shapes:\n")
	sb.WriteString("- roadmap: " + roadmapSchema + "\n")
	sb.WriteString("- projects: " + projectsSchema + "\n")
	sb.WriteString("- weekly tasks: " + tasksSchema + "\n")
	sb.WriteString("Never emit a JSON block otherwise. Outside that block, write normal prose.")

	sb.WriteString("\n\n[Onboarding]\n")
	if p.DiagnosisDone {
		sb.WriteString("You already know the learner's level. Do not re-ask diagnostic questions; build on what is recorded above.")
	} else {
		sb.WriteString("You do not yet know the learner's Python level or AI experience. Before giving plans or advice, ask short diagnostic questions to establish them, one at a time.")
	}

	return sb.String()
}

// profileSummary renders the known facts as short labeled lines. Unknown
// fields are stated as unknown so the model does not invent them.
func profileSummary(p profile.Profile) string {
	var sb strings.Builder

	line := func(label, value string) {
		sb.WriteString(label)
		sb.WriteString(": ")
		if value == "" {
			sb.WriteString("unknown")
		} else {
			sb.WriteString(value)
		}
		sb.WriteString("\n")
	}

	line("Name", p.Name)
	line("Python level", p.PythonLevel)
	line("AI exposure", p.AIExposure)
	line("Career goal", p.CareerGoal)
	if p.TimePerWeek > 0 {
		line("Time per week", fmt.Sprintf("%d hours", p.TimePerWeek))
	} else {
		line("Time per week", "")
	}
	if len(p.CurrentTools) > 0 {
		line("Current tools", strings.Join(p.CurrentTools, ", "))
	}
	if len(p.Strengths) > 0 {
		line("Strengths", strings.Join(p.Strengths, ", "))
	}
	if len(p.Gaps) > 0 {
		line("Gaps", strings.Join(p.Gaps, ", "))
	}

	if len(p.Roadmap) > 0 {
		sb.WriteString(fmt.Sprintf("Roadmap: %d phases, currently on phase %d (%s), %d completed\n",
			len(p.Roadmap), p.CurrentPhase+1, currentPhaseTitle(p), len(p.CompletedPhases)))
	}
	if len(p.Projects) > 0 {
		sb.WriteString(fmt.Sprintf("Suggested projects: %d on record\n", len(p.Projects)))
	}
	if len(p.WeeklyTasks) > 0 {
		sb.WriteString(fmt.Sprintf("Weekly plan: %d tasks on record\n", len(p.WeeklyTasks)))
	}

	return sb.String()
}

func currentPhaseTitle(p profile.Profile) string {
	if p.CurrentPhase >= 0 && p.CurrentPhase < len(p.Roadmap) {
		return p.Roadmap[p.CurrentPhase].Title
	}
	return "?"
}
