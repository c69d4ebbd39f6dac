// Package ipc registers the composite commands as MCP tools for AI coding
// agents. It only builds the tool definitions and handlers; starting a
// transport (stdio, SSE, whatever) and running the request loop is the
// caller's job, not this package's.
package ipc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamie8johnson/cqs/internal/composite"
	"github.com/jamie8johnson/cqs/internal/graph"
)

// DefaultBudget is the token budget a tool call uses when the agent
// doesn't pass one explicitly.
const DefaultBudget = 4000

// RegisterTools attaches the gather/scout/task/onboard/review/impact-diff/
// ci/health composite commands to s as MCP tools, each scoped to deps.
func RegisterTools(s *server.MCPServer, deps composite.Deps) {
	AddGatherTool(s, deps)
	AddScoutTool(s, deps)
	AddTaskTool(s, deps)
	AddOnboardTool(s, deps)
	AddReviewTool(s, deps)
	AddImpactDiffTool(s, deps)
	AddCITool(s, deps)
	AddHealthTool(s, deps)
}

func argsMap(request mcp.CallToolRequest) (map[string]any, error) {
	m, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid arguments format")
	}
	return m, nil
}

func stringArg(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intArg(m map[string]any, key string, def int) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return def
}

func budgetArg(m map[string]any) int {
	return intArg(m, "budget", DefaultBudget)
}

func resultToText(result composite.Result) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// AddGatherTool registers the cqs_gather tool with an MCP server.
func AddGatherTool(s *server.MCPServer, deps composite.Deps) {
	tool := mcp.NewTool(
		"cqs_gather",
		mcp.WithDescription("Hybrid search plus optional call-graph expansion: finds chunks relevant to a query, then walks outward from the hits along callers/callees."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language or symbol-name query")),
		mcp.WithNumber("expand", mcp.Description("Graph hops to expand outward from the search hits (0 disables expansion)")),
		mcp.WithString("direction", mcp.Description("Which edge to expand: 'callers', 'callees', or 'both' (default)")),
		mcp.WithNumber("budget", mcp.Description("Approximate token budget for the response (default 4000)")),
	)
	s.AddTool(tool, createGatherHandler(deps))
}

func createGatherHandler(deps composite.Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := argsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		query := stringArg(m, "query", "")
		if query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		result := composite.Gather(ctx, deps, composite.GatherArgs{
			Query:     query,
			Expand:    intArg(m, "expand", 0),
			Direction: stringArg(m, "direction", "both"),
		}, budgetArg(m))
		return resultToText(result)
	}
}

// AddScoutTool registers the cqs_scout tool with an MCP server.
func AddScoutTool(s *server.MCPServer, deps composite.Deps) {
	tool := mcp.NewTool(
		"cqs_scout",
		mcp.WithDescription("Orients on a task: surfaces likely entry points and related chunks before any code gets written."),
		mcp.WithString("task", mcp.Required(), mcp.Description("Short description of the task to scout")),
		mcp.WithNumber("budget", mcp.Description("Approximate token budget for the response (default 4000)")),
	)
	s.AddTool(tool, createScoutHandler(deps))
}

func createScoutHandler(deps composite.Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := argsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		task := stringArg(m, "task", "")
		if task == "" {
			return mcp.NewToolResultError("task parameter is required"), nil
		}
		return resultToText(composite.Scout(ctx, deps, task, budgetArg(m)))
	}
}

// AddTaskTool registers the cqs_task tool with an MCP server.
func AddTaskTool(s *server.MCPServer, deps composite.Deps) {
	tool := mcp.NewTool(
		"cqs_task",
		mcp.WithDescription("Full task waterfall: scout, relevant code, impact analysis, placement suggestions, and related notes, in one budgeted response."),
		mcp.WithString("description", mcp.Required(), mcp.Description("Description of the task or change to plan for")),
		mcp.WithNumber("budget", mcp.Description("Approximate token budget for the response (default 4000)")),
	)
	s.AddTool(tool, createTaskHandler(deps))
}

func createTaskHandler(deps composite.Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := argsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		desc := stringArg(m, "description", "")
		if desc == "" {
			return mcp.NewToolResultError("description parameter is required"), nil
		}
		return resultToText(composite.Task(ctx, deps, desc, budgetArg(m)))
	}
}

// AddOnboardTool registers the cqs_onboard tool with an MCP server.
func AddOnboardTool(s *server.MCPServer, deps composite.Deps) {
	tool := mcp.NewTool(
		"cqs_onboard",
		mcp.WithDescription("Introduces a concept in this codebase: where it's defined, where it's used, and any notes that mention it."),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Concept, package, or symbol name to onboard onto")),
		mcp.WithNumber("budget", mcp.Description("Approximate token budget for the response (default 4000)")),
	)
	s.AddTool(tool, createOnboardHandler(deps))
}

func createOnboardHandler(deps composite.Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := argsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		concept := stringArg(m, "concept", "")
		if concept == "" {
			return mcp.NewToolResultError("concept parameter is required"), nil
		}
		return resultToText(composite.Onboard(ctx, deps, concept, budgetArg(m)))
	}
}

// AddReviewTool registers the cqs_review tool with an MCP server.
func AddReviewTool(s *server.MCPServer, deps composite.Deps) {
	tool := mcp.NewTool(
		"cqs_review",
		mcp.WithDescription("Reviews the changes against a git ref: diff summary, impact of the changed chunks, and which of them have test coverage."),
		mcp.WithString("ref", mcp.Description("Git ref to diff against (default HEAD)")),
		mcp.WithNumber("budget", mcp.Description("Approximate token budget for the response (default 4000)")),
	)
	s.AddTool(tool, createReviewHandler(deps))
}

func createReviewHandler(deps composite.Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := argsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultToText(composite.Review(ctx, deps, stringArg(m, "ref", "HEAD"), budgetArg(m)))
	}
}

// AddImpactDiffTool registers the cqs_impact_diff tool with an MCP server.
func AddImpactDiffTool(s *server.MCPServer, deps composite.Deps) {
	tool := mcp.NewTool(
		"cqs_impact_diff",
		mcp.WithDescription("Impact analysis restricted to the chunks that changed between two git refs."),
		mcp.WithString("from", mcp.Description("Base git ref (default HEAD)")),
		mcp.WithString("to", mcp.Description("Target git ref (default empty: working tree)")),
		mcp.WithNumber("budget", mcp.Description("Approximate token budget for the response (default 4000)")),
	)
	s.AddTool(tool, createImpactDiffHandler(deps))
}

func createImpactDiffHandler(deps composite.Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := argsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		from := stringArg(m, "from", "HEAD")
		to := stringArg(m, "to", "")
		return resultToText(composite.ImpactDiff(ctx, deps, from, to, budgetArg(m)))
	}
}

// AddCITool registers the cqs_ci tool with an MCP server.
func AddCITool(s *server.MCPServer, deps composite.Deps) {
	tool := mcp.NewTool(
		"cqs_ci",
		mcp.WithDescription("CI gate: reports dead code and, if a base ref is given, impact of the diff against it. The gate phase reports pass/fail for use as a build gate."),
		mcp.WithString("base_ref", mcp.Description("Git ref to diff against; omit to skip the impact_diff phase")),
		mcp.WithString("gate", mcp.Description("Confidence tier the dead-code gate enforces: 'high' (default), 'medium', or 'low'")),
		mcp.WithNumber("budget", mcp.Description("Approximate token budget for the response (default 4000)")),
	)
	s.AddTool(tool, createCIHandler(deps))
}

func createCIHandler(deps composite.Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := argsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		gate := graph.Confidence(stringArg(m, "gate", string(graph.ConfidenceHigh)))
		result := composite.CI(ctx, deps, composite.CIArgs{
			BaseRef: stringArg(m, "base_ref", ""),
			Gate:    gate,
		}, budgetArg(m))
		return resultToText(result)
	}
}

// AddHealthTool registers the cqs_health tool with an MCP server.
func AddHealthTool(s *server.MCPServer, deps composite.Deps) {
	tool := mcp.NewTool(
		"cqs_health",
		mcp.WithDescription("Index health: chunk/embedding stats, stale origins, and a schema summary."),
		mcp.WithNumber("budget", mcp.Description("Approximate token budget for the response (default 4000)")),
	)
	s.AddTool(tool, createHealthHandler(deps))
}

func createHealthHandler(deps composite.Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := argsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultToText(composite.Health(ctx, deps, budgetArg(m)))
	}
}
