package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// skippedExtensions lists file extensions that never contain crawlable HTML.
var skippedExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".pdf": {}, ".doc": {}, ".zip": {},
	".mp4": {}, ".mp3": {},
	".css": {}, ".js": {},
}

// Normalize canonicalizes a URL so the visited set treats equivalent forms as
// one: scheme and host are lowercased, the fragment is dropped, tracking
// query parameters are removed, the remaining query is re-encoded in sorted
// key order, and an empty path becomes "/". Returns an error for anything
// that is not an absolute http or https URL.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if isTrackingParam(key) {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode() // Encode sorts keys
	}

	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// isTrackingParam reports whether a query parameter only carries analytics
// attribution and can be stripped without changing the page.
func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	return strings.HasPrefix(key, "utm_") || key == "gclid" || key == "fbclid"
}

// SameHost reports whether rawURL points at the given host. host must
// already be lowercase, as produced by Normalize.
func SameHost(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.ToLower(u.Host) == host
}

// SkippedExtension reports whether the URL path ends in a file extension the
// crawler should never fetch.
func SkippedExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	_, skip := skippedExtensions[ext]
	return skip
}
