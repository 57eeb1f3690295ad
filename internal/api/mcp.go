package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"aria/internal/profile"
	"aria/internal/prompt"
	"aria/internal/session"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Session *session.Session
}

// NewMCPServer creates an MCP server exposing the learner profile to other
// agents: read it, edit it, advance roadmap progress, and fetch the canned
// prompts that make the chat model emit absorbable payloads.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"aria",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("aria — local AI career guide; structured learner profile, roadmap, and weekly plan."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("get_profile",
			mcp.WithDescription("Return the full learner profile as JSON."),
		),
		mcpGetProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("edit_profile",
			mcp.WithDescription("Set one learner profile field. List fields take comma-separated values."),
			mcp.WithString("field", mcp.Description("One of: name, python_level, ai_exposure, career_goal, time_per_week, current_tools, strengths, gaps"), mcp.Required()),
			mcp.WithString("value", mcp.Description("Value to set"), mcp.Required()),
		),
		mcpEditProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("complete_phase",
			mcp.WithDescription("Mark a roadmap phase as completed and advance the current phase."),
			mcp.WithNumber("phase", mcp.Description("Zero-based phase index"), mcp.Required()),
		),
		mcpCompletePhase(deps),
	)

	s.AddTool(
		mcp.NewTool("suggest_prompt",
			mcp.WithDescription("Return a canned prompt that makes the assistant generate structured content."),
			mcp.WithString("name", mcp.Description("One of: roadmap, projects, tasks, challenge, advice"), mcp.Required()),
		),
		mcpSuggestPrompt(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"aria://profile",
			"Learner Profile",
			mcp.WithResourceDescription("Current learner profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"aria://roadmap",
			"Learning Roadmap",
			mcp.WithResourceDescription("Roadmap phases with progress as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRoadmap(deps),
	)

	return s
}

func mcpGetProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(deps.Session.Profile())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpEditProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		field, err := req.RequireString("field")
		if err != nil {
			return mcpError("field is required"), nil
		}
		value, err := req.RequireString("value")
		if err != nil {
			return mcpError("value is required"), nil
		}

		edit, err := editForField(field, value)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		if _, err := deps.Session.ApplyEdit(edit); err != nil {
			return mcpError(fmt.Sprintf("failed to edit profile: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Set %s = %s", field, value)), nil
	}
}

// editForField maps a field name and string value onto a profile edit.
func editForField(field, value string) (profile.Edit, error) {
	var edit profile.Edit
	switch field {
	case "name":
		edit.Name = &value
	case "python_level":
		edit.PythonLevel = &value
	case "ai_exposure":
		edit.AIExposure = &value
	case "career_goal":
		edit.CareerGoal = &value
	case "time_per_week":
		n, err := strconv.Atoi(value)
		if err != nil {
			return edit, fmt.Errorf("time_per_week must be an integer, got %q", value)
		}
		edit.TimePerWeek = &n
	case "current_tools":
		list := splitList(value)
		edit.CurrentTools = &list
	case "strengths":
		list := splitList(value)
		edit.Strengths = &list
	case "gaps":
		list := splitList(value)
		edit.Gaps = &list
	default:
		return edit, fmt.Errorf("unknown field %q", field)
	}
	return edit, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mcpCompletePhase(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index, err := req.RequireInt("phase")
		if err != nil {
			return mcpError("phase is required"), nil
		}

		p, err := deps.Session.CompletePhase(index)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to complete phase: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Phase %d completed; now on phase %d of %d", index+1, p.CurrentPhase+1, len(p.Roadmap))), nil
	}
}

func mcpSuggestPrompt(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		text := prompt.Quick(name)
		if text == "" {
			return mcpError(fmt.Sprintf("unknown prompt %q; available: %s", name, strings.Join(prompt.QuickNames(), ", "))), nil
		}
		return mcpText(text), nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Session.Profile())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceRoadmap(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p := deps.Session.Profile()
		b, err := json.Marshal(map[string]any{
			"phases":           p.Roadmap,
			"current_phase":    p.CurrentPhase,
			"completed_phases": p.CompletedPhases,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal roadmap: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
