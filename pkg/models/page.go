package models

// PageRecord is one crawled page: the unit of work handed to the analyzer.
// Text is cleaned, whitespace-collapsed content and is never empty.
type PageRecord struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
	Depth int    `json:"depth"`
}
