// Package search provides the web search providers used by the research stage.
//
// Available providers:
//
//   - DuckDuckGo: free, no API key required (scrapes lite.duckduckgo.com)
//   - Brave: requires an API key via X-Subscription-Token
package search

import "context"

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider executes a web search for a query.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// maxResultsPerQuery caps how many hits a provider returns for one query.
const maxResultsPerQuery = 5
