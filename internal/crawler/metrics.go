package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pagesFetched tracks pages successfully fetched and recorded.
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_fetched_total",
		Help: "The total number of pages successfully fetched and recorded.",
	})
	// fetchErrors tracks fetches that failed after retries.
	fetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_fetch_errors_total",
		Help: "The total number of failed page fetches.",
	})
	// linksDiscovered tracks never-before-seen links entering the frontier.
	linksDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_links_discovered_total",
		Help: "The total number of new links added to the crawl frontier.",
	})
	// duplicateLinks tracks links skipped by the visited check.
	duplicateLinks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_duplicate_links_total",
		Help: "The total number of links skipped as already visited.",
	})
)
