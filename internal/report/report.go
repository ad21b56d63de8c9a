// Package report renders a stored cohesion analysis as a human-readable
// Markdown document.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/siteradius/siteradius/pkg/models"
)

// Write renders the cohesion result as Markdown to w.
func Write(w io.Writer, result *models.CohesionResult) error {
	if result == nil {
		return fmt.Errorf("result is required")
	}

	md := markdown.NewMarkdown(w)

	md.H1("SiteRadius Cohesion Report")
	md.PlainText("")
	writeOverview(md, result)
	writeComposition(md, result)
	writeDistribution(md, result)
	writePages(md, result)

	return md.Build()
}

func writeOverview(md *markdown.Markdown, result *models.CohesionResult) {
	meta := result.Metadata
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", meta.URL},
			{"Pages Analyzed", strconv.Itoa(meta.PageCount)},
			{"Pages Omitted", strconv.Itoa(meta.PagesOmitted)},
			{"Focus Score", formatScore(result.FocusScore)},
			{"Radius", formatScore(result.Radius)},
			{"Embedding Model", meta.Model},
			{"Analyzed At", meta.Timestamp.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")
}

func writeComposition(md *markdown.Markdown, result *models.CohesionResult) {
	md.H2("Content Composition")
	md.PlainText("")

	comp := result.ContentComposition
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Pages", "Share"},
		Rows: [][]string{
			{"Central", strconv.Itoa(comp.Central.Count), formatPercent(comp.Central.Percentage)},
			{"Support", strconv.Itoa(comp.Support.Count), formatPercent(comp.Support.Percentage)},
			{"Peripheral", strconv.Itoa(comp.Peripheral.Count), formatPercent(comp.Peripheral.Percentage)},
		},
	})
	md.PlainText("")
}

func writeDistribution(md *markdown.Markdown, result *models.CohesionResult) {
	md.H2("Similarity Distribution")
	md.PlainText("")

	rows := make([][]string, len(result.SimilarityDistribution))
	for i, bin := range result.SimilarityDistribution {
		rows[i] = []string{bin.Range, strconv.Itoa(bin.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Similarity", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writePages(md *markdown.Markdown, result *models.CohesionResult) {
	md.H2("Pages")
	md.PlainText("")

	if len(result.PageMetrics) == 0 {
		md.PlainText("No pages analyzed.")
		md.PlainText("")
		return
	}

	categories := make(map[string]string, len(result.ContentClusters))
	for _, cluster := range result.ContentClusters {
		categories[cluster.URL] = cluster.Category
	}

	metrics := make([]models.PageMetric, len(result.PageMetrics))
	copy(metrics, result.PageMetrics)
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].Similarity > metrics[j].Similarity
	})

	rows := make([][]string, len(metrics))
	for i, m := range metrics {
		rows[i] = []string{
			m.URL,
			formatScore(m.Similarity),
			formatScore(m.InfoDensity),
			categories[m.URL],
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Similarity", "Info Density", "Category"},
		Rows:   rows,
	})
	md.PlainText("")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
