// Package crawler implements the bounded, polite crawl engine: it discovers
// and fetches same-site pages concurrently and hands the analyzer a finite
// set of page records.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/siteradius/siteradius/internal/processor"
	"github.com/siteradius/siteradius/pkg/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Config holds crawl engine configuration.
type Config struct {
	MaxPages      int           // hard cap on URLs claimed for fetching
	MaxDepth      int           // 0 means only the seed page
	Delay         time.Duration // per-worker politeness delay between requests
	Timeout       time.Duration // per-request timeout
	Workers       int           // size of the fetch worker pool
	UserAgent     string
	MinTextLength int // pages with less extracted text are skipped

	// OnProgress, when set, is called as pages are claimed. It is advisory
	// only and never required for correctness.
	OnProgress func(fraction float64, message string)
}

// Crawler fetches pages of one site and extracts their text content.
type Crawler struct {
	config     Config
	httpClient *http.Client
	processor  *processor.Processor
}

// New creates a Crawler with the given configuration, filling in defaults
// for unset operational fields. Limits are validated in Crawl.
func New(config Config) *Crawler {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Workers <= 0 {
		config.Workers = 10
	}
	if config.UserAgent == "" {
		config.UserAgent = "SiteRadius/1.0"
	}
	if config.MinTextLength <= 0 {
		config.MinTextLength = 100
	}
	return &Crawler{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		processor:  processor.New(),
	}
}

// pendingURL is one discovered URL waiting in the frontier.
type pendingURL struct {
	url   string
	depth int
}

// outcome is what a worker hands back to the dispatcher for one URL.
// A nil record means the URL was skipped or failed; links carry any
// same-host URLs discovered on the page.
type outcome struct {
	record *models.PageRecord
	links  []pendingURL
}

// Crawl walks the site starting at seedURL and returns the pages that
// yielded extractable text. The result is bounded by MaxPages. Individual
// fetch failures are logged and skipped; an unreachable seed yields an empty
// slice and a nil error. When the context is cancelled the pages collected
// so far are returned together with the context error.
//
// Emission order follows worker completion, not discovery order.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) ([]models.PageRecord, error) {
	if c.config.MaxPages < 1 {
		return nil, ErrInvalidMaxPages
	}
	if c.config.MaxDepth < 0 {
		return nil, ErrInvalidMaxDepth
	}
	if c.config.Delay < 0 {
		return nil, ErrInvalidDelay
	}
	seed, err := Normalize(seedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeedURL, err)
	}
	seedParsed, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeedURL, err)
	}
	host := seedParsed.Host

	slog.Debug("starting crawl",
		"url", seed,
		"max_pages", c.config.MaxPages,
		"max_depth", c.config.MaxDepth,
		"workers", c.config.Workers,
	)

	robots := LoadRobots(ctx, c.httpClient, seedParsed, c.config.UserAgent)
	visited := NewVisitSet(c.config.MaxPages)

	work := make(chan pendingURL)
	outcomes := make(chan outcome)

	g, gctx := errgroup.WithContext(ctx)
	for range c.config.Workers {
		g.Go(func() error {
			// The limiter is per worker: each fetch loop paces itself while
			// the pool still overlaps requests.
			limiter := rate.NewLimiter(rate.Every(c.config.Delay), 1)
			for item := range work {
				out := c.process(gctx, item, host, visited, robots, limiter)
				select {
				case outcomes <- out:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	// The dispatcher owns the frontier and the record list exclusively, so
	// neither needs a lock. It runs until the frontier is drained and all
	// in-flight work has come back.
	var records []models.PageRecord
	frontier := []pendingURL{{url: seed, depth: 0}}
	inFlight := 0
	cancelled := false

loop:
	for len(frontier) > 0 || inFlight > 0 {
		if visited.Full() && inFlight == 0 {
			// The remaining frontier can never be claimed.
			break
		}

		var dispatch chan pendingURL
		var next pendingURL
		if len(frontier) > 0 && !visited.Full() {
			dispatch = work
			next = frontier[0]
		}

		select {
		case dispatch <- next:
			frontier = frontier[1:]
			inFlight++
		case out := <-outcomes:
			inFlight--
			if out.record != nil {
				records = append(records, *out.record)
			}
			for _, link := range out.links {
				if !visited.Contains(link.url) {
					frontier = append(frontier, link)
				}
			}
			c.reportProgress(visited.Len())
		case <-ctx.Done():
			cancelled = true
			break loop
		}
	}

	close(work)
	if err := g.Wait(); err != nil {
		cancelled = true
	}

	if cancelled {
		slog.Info("crawl cancelled", "url", seed, "pages", len(records))
		return records, ctx.Err()
	}

	slog.Debug("crawl complete", "url", seed, "pages", len(records))
	return records, nil
}

// process runs one URL through the claim, robots, throttle, fetch, and
// extract steps. Every failure is local: the URL is dropped and the crawl
// moves on.
func (c *Crawler) process(ctx context.Context, item pendingURL, host string, visited *VisitSet, robots *Robots, limiter *rate.Limiter) outcome {
	// Claiming before fetching is what keeps two workers off the same URL.
	if !visited.Claim(item.url) {
		return outcome{}
	}
	if !robots.Allowed(item.url) {
		slog.Debug("disallowed by robots.txt", "url", item.url)
		return outcome{}
	}
	if err := limiter.Wait(ctx); err != nil {
		return outcome{}
	}

	body, err := c.fetch(ctx, item.url)
	if err != nil {
		slog.Debug("fetch failed", "url", item.url, "error", err)
		return outcome{}
	}

	var out outcome
	text := c.processor.ExtractText(body)
	if len(text) >= c.config.MinTextLength {
		out.record = &models.PageRecord{
			URL:   item.url,
			Title: c.processor.ExtractTitle(body),
			Text:  text,
			Depth: item.depth,
		}
	} else {
		slog.Debug("not enough content", "url", item.url, "length", len(text))
	}

	if item.depth < c.config.MaxDepth {
		out.links = c.discoverLinks(item, host, body, visited)
	}
	return out
}

// discoverLinks extracts, normalizes, and filters the page's same-host links
// for enqueueing at depth+1.
func (c *Crawler) discoverLinks(item pendingURL, host, body string, visited *VisitSet) []pendingURL {
	var links []pendingURL
	seen := make(map[string]struct{})
	for _, raw := range c.processor.ExtractLinks(item.url, body) {
		normalized, err := Normalize(raw)
		if err != nil {
			continue
		}
		if !SameHost(normalized, host) || SkippedExtension(normalized) {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		if visited.Contains(normalized) {
			continue
		}
		seen[normalized] = struct{}{}
		links = append(links, pendingURL{url: normalized, depth: item.depth + 1})
	}
	return links
}

func (c *Crawler) reportProgress(claimed int) {
	if c.config.OnProgress == nil {
		return
	}
	fraction := float64(claimed) / float64(c.config.MaxPages)
	if fraction > 1 {
		fraction = 1
	}
	c.config.OnProgress(fraction, fmt.Sprintf("fetched %d of up to %d pages", claimed, c.config.MaxPages))
}
