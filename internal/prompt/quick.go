package prompt

// Quick prompts ask the model for the structured payloads the absorber
// understands, or for level-matched one-off content. Keyed by the short
// names the CLI and MCP surface expose.
var quickPrompts = map[string]string{
	"roadmap": "Based on everything you know about me so far, generate my personalized roadmap now. " +
		"Output it as a JSON block following the schema you've been given.",
	"projects": "Based on my current level, suggest 3 portfolio projects for me. " +
		"Output them as a JSON block following the schema you've been given.",
	"tasks": "Generate my weekly tasks for my current phase. " +
		"Output them as a JSON block following the schema you've been given.",
	"challenge": "Give me a coding challenge appropriate for my exact current level right now.",
	"advice": "Give me honest, specific career advice for becoming an Agentic AI developer in 2025. " +
		"Tell me what skills matter most and what my GitHub needs to look like.",
}

// Quick returns the canned prompt for name, or "" when unknown.
func Quick(name string) string {
	return quickPrompts[name]
}

// QuickNames lists the available quick prompt names.
func QuickNames() []string {
	return []string{"roadmap", "projects", "tasks", "challenge", "advice"}
}
