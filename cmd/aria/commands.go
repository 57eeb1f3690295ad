package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"aria/internal/config"
	"aria/internal/persona"
	"aria/internal/profile"
	"aria/internal/prompt"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message to aria and stream the reply",
	Long: `Send one message to aria and stream the reply.

Examples:
  aria chat "I'm a complete beginner with Python"
  aria chat --prompt roadmap
  aria chat --prompt projects`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quick, _ := cmd.Flags().GetString("prompt")

		var message string
		switch {
		case quick != "":
			message = prompt.Quick(quick)
			if message == "" {
				return fmt.Errorf("unknown quick prompt %q; available: %s", quick, strings.Join(prompt.QuickNames(), ", "))
			}
		case len(args) > 0:
			message = strings.Join(args, " ")
		default:
			return fmt.Errorf("a message or --prompt is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		result, err := client.streamChat(cmd.Context(), message, func(tok string) {
			fmt.Print(tok)
		})
		if err != nil {
			return err
		}
		fmt.Println()

		if result.Absorbed {
			printSuccess("Profile updated from generated content")
		} else if result.ProfileChanged {
			printSuccess("Profile updated")
		}
		active := persona.Get(persona.ID(result.Persona))
		printStatus("Persona", "%s", colorize(personaColor(active.Color), active.Name))
		return nil
	},
}

func init() {
	chatCmd.Flags().String("prompt", "", "quick prompt name (roadmap, projects, tasks, challenge, advice)")
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the learner profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		printField := func(label, value string) {
			if value == "" {
				value = colorize(colorYellow, "not yet known")
			}
			fmt.Printf("  %s %s\n", colorize(colorBold, label+":"), value)
		}

		printField("Name", p.Name)
		printField("Python Level", p.PythonLevel)
		printField("AI/ML Exposure", p.AIExposure)
		printField("Career Goal", p.CareerGoal)
		if p.TimePerWeek > 0 {
			printField("Hours per Week", strconv.Itoa(p.TimePerWeek))
		} else {
			printField("Hours per Week", "")
		}
		printField("Current Tools", strings.Join(p.CurrentTools, ", "))
		printField("Strengths", strings.Join(p.Strengths, ", "))
		printField("Known Gaps", strings.Join(p.Gaps, ", "))
		if len(p.Roadmap) > 0 {
			printField("Roadmap", fmt.Sprintf("%d phases (on phase %d)", len(p.Roadmap), p.CurrentPhase+1))
		} else {
			printField("Roadmap", "")
		}
		if len(p.Projects) > 0 {
			printField("Projects", fmt.Sprintf("%d suggested", len(p.Projects)))
		} else {
			printField("Projects", "")
		}
		if p.DiagnosisDone {
			printField("Diagnosis", "complete")
		} else {
			printField("Diagnosis", "pending")
		}
		printField("Last Updated", p.LastUpdated)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set a profile field",
	Long: `Set a profile field. List fields take comma-separated values.

Fields: name, python_level, ai_exposure, career_goal, time_per_week,
current_tools, strengths, gaps`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, value := args[0], args[1]

		body, err := patchBody(field, value)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.patch(cmd.Context(), "/profile", body)
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		printSuccess("Set %s = %s", field, value)
		return nil
	},
}

// patchBody converts a CLI field/value pair to a typed PATCH payload.
func patchBody(field, value string) (map[string]any, error) {
	switch field {
	case "name", "python_level", "ai_exposure", "career_goal":
		return map[string]any{field: value}, nil
	case "time_per_week":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("time_per_week must be an integer, got %q", value)
		}
		return map[string]any{field: n}, nil
	case "current_tools", "strengths", "gaps":
		parts := strings.Split(value, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		return map[string]any{field: list}, nil
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open editable profile fields in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		// Only the manually editable subset; generated sections are owned
		// by the conversation.
		editable := map[string]any{
			"name":          p.Name,
			"python_level":  p.PythonLevel,
			"ai_exposure":   p.AIExposure,
			"career_goal":   p.CareerGoal,
			"time_per_week": p.TimePerWeek,
			"current_tools": p.CurrentTools,
			"strengths":     p.Strengths,
			"gaps":          p.Gaps,
		}
		data, err := json.MarshalIndent(editable, "", "  ")
		if err != nil {
			return err
		}

		tmpFile, err := os.CreateTemp("", "aria-profile-*.json")
		if err != nil {
			return fmt.Errorf("creating temp file: %w", err)
		}
		tmpPath := tmpFile.Name()
		defer os.Remove(tmpPath)

		if _, err := tmpFile.Write(data); err != nil {
			tmpFile.Close()
			return err
		}
		tmpFile.Close()

		editorCmd := exec.Command(editor, tmpPath)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		if err := editorCmd.Run(); err != nil {
			return fmt.Errorf("editor exited with error: %w", err)
		}

		edited, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		var fields map[string]any
		if err := json.Unmarshal(edited, &fields); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}

		patchResp, err := client.patch(cmd.Context(), "/profile", fields)
		if err != nil {
			return err
		}
		defer patchResp.Body.Close()

		if patchResp.StatusCode >= 400 {
			return fmt.Errorf("server returned %d", patchResp.StatusCode)
		}

		printSuccess("Profile updated")
		return nil
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var p any
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		writer := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			writer = f
		}

		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return err
		}

		if output != "" {
			printSuccess("Profile exported to %s", output)
		}
		return nil
	},
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the profile and conversation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This will delete your profile and chat history. Use --confirm to proceed.")
			return nil
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var p any
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		printSuccess("Everything reset")
		return nil
	},
}

func init() {
	profileExportCmd.Flags().String("output", "", "output file path (default: stdout)")
	profileResetCmd.Flags().Bool("confirm", false, "confirm the reset")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileExportCmd)
	profileCmd.AddCommand(profileResetCmd)
}

// --- roadmap ---

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Show the learning roadmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		if len(p.Roadmap) == 0 {
			printWarning("No roadmap yet. Try: aria chat --prompt roadmap")
			return nil
		}

		completed := make(map[int]bool, len(p.CompletedPhases))
		for _, i := range p.CompletedPhases {
			completed[i] = true
		}

		for i, phase := range p.Roadmap {
			marker := " "
			switch {
			case completed[i]:
				marker = colorize(colorGreen, "✓")
			case i == p.CurrentPhase:
				marker = colorize(colorCyan, "→")
			}
			title := phase.Title
			if phase.Weeks != "" {
				title = fmt.Sprintf("%s (weeks %s)", title, phase.Weeks)
			}
			fmt.Printf("%s %s %s\n", marker, colorize(colorBold, fmt.Sprintf("Phase %d", i+1)), title)
			if len(phase.Topics) > 0 {
				fmt.Printf("    topics: %s\n", strings.Join(phase.Topics, ", "))
			}
			if phase.Milestone != "" {
				fmt.Printf("    milestone: %s\n", phase.Milestone)
			}
		}
		return nil
	},
}

var roadmapCompleteCmd = &cobra.Command{
	Use:   "complete <phase>",
	Short: "Mark a roadmap phase (1-based) as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		phase, err := strconv.Atoi(args[0])
		if err != nil || phase < 1 {
			return fmt.Errorf("phase must be a positive number, got %q", args[0])
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), fmt.Sprintf("/roadmap/phases/%d/complete", phase-1), nil)
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		printSuccess("Phase %d completed; now on phase %d of %d", phase, p.CurrentPhase+1, len(p.Roadmap))
		return nil
	},
}

func init() {
	roadmapCmd.AddCommand(roadmapCompleteCmd)
}

// --- projects ---

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Show suggested portfolio projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		if len(p.Projects) == 0 {
			printWarning("No project suggestions yet. Try: aria chat --prompt projects")
			return nil
		}

		for _, proj := range p.Projects {
			fmt.Printf("%s %s", colorize(colorBold, fmt.Sprintf("%d.", proj.Rank)), proj.Name)
			if proj.Complexity != "" {
				fmt.Printf(" [%s]", proj.Complexity)
			}
			fmt.Println()
			if len(proj.Tech) > 0 {
				fmt.Printf("   tech: %s\n", strings.Join(proj.Tech, ", "))
			}
			if proj.Description != "" {
				fmt.Printf("   %s\n", proj.Description)
			}
			if proj.Why != "" {
				fmt.Printf("   why: %s\n", proj.Why)
			}
		}
		return nil
	},
}

// --- tasks ---

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show this week's tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		if len(p.WeeklyTasks) == 0 {
			printWarning("No weekly tasks yet. Try: aria chat --prompt tasks")
			return nil
		}

		for _, task := range p.WeeklyTasks {
			line := fmt.Sprintf("%s %s", colorize(colorBold, task.Day), task.Task)
			if task.EstimatedHours > 0 {
				line += fmt.Sprintf(" (%gh)", task.EstimatedHours)
			}
			fmt.Println(line)
			if task.Resource != "" {
				fmt.Printf("    resource: %s\n", task.Resource)
			}
		}
		return nil
	},
}

// --- models ---

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available in the local Ollama instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/models")
		if err != nil {
			return err
		}

		var body struct {
			Models []string `json:"models"`
			Active string   `json:"active"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		for _, m := range body.Models {
			marker := "  "
			if m == body.Active || strings.HasPrefix(m, body.Active+":") {
				marker = colorize(colorGreen, "* ")
			}
			fmt.Printf("%s%s\n", marker, m)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
