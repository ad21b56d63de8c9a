package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/siteradius/siteradius/internal/report"
	"github.com/siteradius/siteradius/internal/store"
	"github.com/spf13/cobra"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report <analysis-id>",
	Short: "Render a stored analysis as Markdown",
	Long: `Load a stored analysis by its ID and render it as a Markdown report.

Examples:
  # Print the report to stdout
  siteradius report 3f2a9c1e8b7d6a05

  # Write the report to a file
  siteradius report 3f2a9c1e8b7d6a05 --output cohesion.md`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to a file instead of stdout")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	id := args[0]

	st, err := store.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create results store: %w", err)
	}

	result, err := st.Load(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no analysis found with ID %s", id)
		}
		return fmt.Errorf("failed to load analysis: %w", err)
	}

	out := os.Stdout
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return report.Write(out, result)
}
