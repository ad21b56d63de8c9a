package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/siteradius/siteradius/internal/pipeline"
	"github.com/siteradius/siteradius/internal/store"
	"github.com/siteradius/siteradius/pkg/models"
	"github.com/spf13/cobra"
)

var (
	analyzeMaxPages int
	analyzeMaxDepth int
	analyzeFormat   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Crawl a site and analyze its thematic cohesion",
	Long: `Crawl a website starting from the given URL, embed each page's text,
and compute the site's cohesion metrics. The result is saved to the
configured store and a summary is printed.

Examples:
  # Analyze with configured defaults
  siteradius analyze https://example.com

  # Limit the crawl
  siteradius analyze https://example.com --max-pages 20 --max-depth 2

  # Emit the full result as JSON
  siteradius analyze https://example.com --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&analyzeMaxPages, "max-pages", 0, "maximum pages to crawl (0 = config default)")
	analyzeCmd.Flags().IntVar(&analyzeMaxDepth, "max-depth", 0, "maximum link depth (0 = config default)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text or json")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if analyzeFormat != "text" && analyzeFormat != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", analyzeFormat)
	}

	cfg := GetConfig()

	st, err := store.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create results store: %w", err)
	}

	p, err := pipeline.New(cfg, st)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	req := pipeline.Request{
		URL:      args[0],
		MaxPages: analyzeMaxPages,
		MaxDepth: analyzeMaxDepth,
	}

	var progress pipeline.Progress
	if analyzeFormat == "text" {
		progress = func(fraction float64, message string) {
			fmt.Printf("[%3.0f%%] %s\n", fraction*100, message)
		}
	}

	result, err := p.Run(ctx, req, progress)
	if err != nil {
		return err
	}

	if analyzeFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printSummary(result, p.AnalysisID(req))
	return nil
}

func printSummary(result *models.CohesionResult, id string) {
	comp := result.ContentComposition

	fmt.Println()
	fmt.Printf("Analysis ID:  %s\n", id)
	fmt.Printf("Site:         %s\n", result.Metadata.URL)
	fmt.Printf("Pages:        %d analyzed, %d omitted\n", result.Metadata.PageCount, result.Metadata.PagesOmitted)
	fmt.Printf("Focus score:  %.4f\n", result.FocusScore)
	fmt.Printf("Radius:       %.4f\n", result.Radius)
	fmt.Printf("Composition:  %d central / %d support / %d peripheral\n",
		comp.Central.Count, comp.Support.Count, comp.Peripheral.Count)
	fmt.Println()
	fmt.Printf("Run 'siteradius report %s' for the full Markdown report\n", id)
}
