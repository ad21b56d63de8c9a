package cmd

import (
	"fmt"

	"github.com/siteradius/siteradius/internal/mcp"
	"github.com/siteradius/siteradius/internal/pipeline"
	"github.com/siteradius/siteradius/internal/store"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the MCP server for cohesion analysis.

The server communicates via stdio and provides two tools:
  - analyze_site: Crawl and analyze a website's thematic cohesion
  - get_analysis: Get a stored analysis by ID

Example:
  siteradius mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	st, err := store.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create results store: %w", err)
	}

	p, err := pipeline.New(cfg, st)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	s, err := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
	}, p, st)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return s.ServeStdio()
}
