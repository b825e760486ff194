// Package crawler implements the crawl coordinator and the contracts of its
// collaborators.
package crawler

import "time"

// Record is produced by exactly one task, for the one URL it fetched.
// Records are written once to the sink and never revised.
type Record struct {
	URL   string   `json:"url"`
	Title string   `json:"title"`
	Links []string `json:"links"`
	Depth int      `json:"depth"`
}

// Config holds the immutable parameters of one crawl run.
type Config struct {
	SeedURL  string
	MaxDepth int
	Workers  int
}

// Summary reports counters for a completed run.
type Summary struct {
	RunID             string        `json:"run_id"`
	PagesRecorded     int64         `json:"pages_recorded"`
	LinksDiscovered   int64         `json:"links_discovered"`
	DuplicatesSkipped int64         `json:"duplicates_skipped"`
	FetchFailures     int64         `json:"fetch_failures"`
	Duration          time.Duration `json:"duration"`
}
