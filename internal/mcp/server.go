// Package mcp exposes site cohesion analysis as MCP tools over stdio, so
// agent clients can trigger analyses and read stored results.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/siteradius/siteradius/internal/pipeline"
	"github.com/siteradius/siteradius/internal/store"
	"github.com/siteradius/siteradius/pkg/models"
)

// Config holds MCP server identity.
type Config struct {
	Name    string
	Version string
}

// Server wraps the MCP server around the analysis pipeline and the results
// store.
type Server struct {
	mcpServer *server.MCPServer
	pipeline  *pipeline.Pipeline
	store     store.Store
}

// NewServer creates an MCP server with the analysis tools registered.
func NewServer(config Config, p *pipeline.Pipeline, st store.Store) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		pipeline:  p,
		store:     st,
	}

	analyzeTool := mcp.NewTool("analyze_site",
		mcp.WithDescription("Crawl a website and analyze its thematic cohesion. Returns the full cohesion result as JSON."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Seed URL of the site to analyze"),
		),
		mcp.WithNumber("max_pages",
			mcp.Description("Maximum number of pages to crawl (default from configuration)"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum link depth from the seed (default from configuration)"),
		),
	)
	mcpServer.AddTool(analyzeTool, s.analyzeSiteHandler)

	getTool := mcp.NewTool("get_analysis",
		mcp.WithDescription("Get a previously stored cohesion analysis by its ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Analysis ID to retrieve"),
		),
	)
	mcpServer.AddTool(getTool, s.getAnalysisHandler)

	return s, nil
}

// analyzeSiteHandler handles the analyze_site tool call.
func (s *Server) analyzeSiteHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required"), nil
	}

	maxPages := req.GetInt("max_pages", 0)
	maxDepth := req.GetInt("max_depth", 0)

	result, err := s.handleAnalyzeSite(ctx, rawURL, maxPages, maxDepth)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

// getAnalysisHandler handles the get_analysis tool call.
func (s *Server) getAnalysisHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	result, err := s.handleGetAnalysis(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("analysis not found: %s", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("get analysis failed: %v", err)), nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

// handleAnalyzeSite runs one synchronous analysis. MCP clients hold the
// connection open, so there is no task indirection here.
func (s *Server) handleAnalyzeSite(ctx context.Context, rawURL string, maxPages, maxDepth int) (*models.CohesionResult, error) {
	return s.pipeline.Run(ctx, pipeline.Request{
		URL:      rawURL,
		MaxPages: maxPages,
		MaxDepth: maxDepth,
	}, nil)
}

// handleGetAnalysis retrieves a stored analysis by ID.
func (s *Server) handleGetAnalysis(ctx context.Context, id string) (*models.CohesionResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no results store configured")
	}
	return s.store.Load(ctx, id)
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
