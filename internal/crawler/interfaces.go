package crawler

import "context"

// Fetcher retrieves raw page content for a URL. Implementations own timeout
// and retry policy; the engine treats any error uniformly as a failed fetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor pulls a title and candidate outbound links from raw markup.
// Implementations must degrade to partial or empty results on malformed
// markup, never fail.
type Extractor interface {
	Links(content, baseURL string) []string
	Title(content string) string
}

// Sink collects crawl records. Append must be safe for concurrent use;
// Finalize is called exactly once, after all tasks have completed.
type Sink interface {
	Append(rec Record)
	Finalize() error
}
