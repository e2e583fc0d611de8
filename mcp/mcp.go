// Package mcp exposes crew plan generation as an MCP stdio server, so that
// agent runtimes can request crew plans as a tool call.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Flow is the part of crewforge.Flow the MCP server needs.
type Flow interface {
	Run(ctx context.Context, taskDescription string, config crewforge.GenerationConfig) (*crewforge.CrewPlan, error)
}

// Server wraps an MCP server exposing the create_crew_plan tool.
type Server struct {
	mcp  *server.MCPServer
	flow Flow
}

// New builds an MCP server around the given flow.
func New(flow Flow, version string) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			"crewforge",
			version,
			server.WithToolCapabilities(false),
		),
		flow: flow,
	}

	tool := mcp.NewTool("create_crew_plan",
		mcp.WithDescription("Generate a validated multi-agent crew plan from a free text task description"),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("Free text description of the task the crew should accomplish"),
		),
		mcp.WithString("model",
			mcp.Description("Model name to use for plan generation"),
		),
		mcp.WithNumber("temperature",
			mcp.Description("Sampling temperature between 0 and 1"),
		),
	)
	s.mcp.AddTool(tool, s.handleCreateCrewPlan)

	return s
}

// ServeStdio runs the server over stdin and stdout until EOF.
func (x *Server) ServeStdio() error {
	if err := server.ServeStdio(x.mcp); err != nil {
		return goerr.Wrap(err, "mcp stdio server failed")
	}
	return nil
}

func (x *Server) handleCreateCrewPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, ok := req.Params.Arguments["task"].(string)
	if !ok || task == "" {
		return mcp.NewToolResultError("task is required"), nil
	}

	config := crewforge.DefaultGenerationConfig()
	if model, ok := req.Params.Arguments["model"].(string); ok && model != "" {
		config.Model = model
	}
	if temperature, ok := req.Params.Arguments["temperature"].(float64); ok && temperature > 0 {
		config.Temperature = temperature
	}

	plan, err := x.flow.Run(ctx, task, config)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode crew plan")
	}
	return mcp.NewToolResultText(string(body)), nil
}
