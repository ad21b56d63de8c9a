package crawler

import "errors"

// Crawl input validation errors. They are returned before any network work
// starts, so a rejected crawl never touches the target site. Callers match
// them with errors.Is.
var (
	// ErrInvalidSeedURL is returned when the seed is not an absolute
	// http or https URL.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must be an absolute http or https URL")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	// A cap of zero would make every crawl empty.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxDepth is returned when the depth limit is negative.
	// Use 0 to crawl only the seed page.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidDelay is returned when the request delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid request delay: must be non-negative")
)
