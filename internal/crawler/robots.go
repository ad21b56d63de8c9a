package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"
)

// Robots answers whether the site's robots.txt allows fetching a URL.
// A nil group means the policy could not be loaded and everything is allowed.
type Robots struct {
	group *robotstxt.Group
}

// LoadRobots fetches and parses robots.txt from the seed's host, once per
// crawl run. Any failure to fetch or parse yields an allow-all policy: an
// unreachable robots file must not block the crawl.
func LoadRobots(ctx context.Context, client *http.Client, seed *url.URL, userAgent string) *Robots {
	robotsURL := seed.Scheme + "://" + seed.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return &Robots{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		slog.Debug("robots.txt not reachable, allowing all", "url", robotsURL, "error", err)
		return &Robots{}
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		slog.Debug("robots.txt not parseable, allowing all", "url", robotsURL, "error", err)
		return &Robots{}
	}

	slog.Debug("loaded robots.txt", "url", robotsURL, "status", resp.StatusCode)
	return &Robots{group: data.FindGroup(userAgent)}
}

// Allowed reports whether the policy permits fetching rawURL.
func (r *Robots) Allowed(rawURL string) bool {
	if r == nil || r.group == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return r.group.Test(path)
}
