package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/mpetrov/sitemapper/internal/pool"
)

// Engine drives one bounded-depth crawl run to completion.
//
// It owns the visited set and the sink for the duration of Run. Each task
// fetches one URL, records the result, and feeds newly discovered links back
// into the pool, so the pool's drain barrier is what guarantees termination.
// An Engine is single-use: construct a fresh one per run.
type Engine struct {
	cfg       Config
	fetcher   Fetcher
	extractor Extractor
	sink      Sink
	logger    *zap.Logger
	runID     string

	// visited is the dedup set. Add is an atomic check-and-insert: exactly
	// one of any number of concurrent discoverers of a URL wins.
	visited mapset.Set[string]

	pages      atomic.Int64
	discovered atomic.Int64
	duplicates atomic.Int64
	failures   atomic.Int64

	started atomic.Bool
}

// New validates cfg and constructs an Engine. No I/O happens until Run.
func New(cfg Config, fetcher Fetcher, extractor Extractor, sink Sink, runID string, logger *zap.Logger) (*Engine, error) {
	if strings.TrimSpace(cfg.SeedURL) == "" {
		return nil, errors.New("crawler: seed URL must be set")
	}
	if cfg.MaxDepth < 0 {
		return nil, errors.New("crawler: max depth must be >= 0")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("crawler: worker count must be >= 1")
	}
	if fetcher == nil || extractor == nil || sink == nil {
		return nil, errors.New("crawler: fetcher, extractor, and sink are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		sink:      sink,
		logger:    logger,
		runID:     runID,
		visited:   mapset.NewSet[string](),
	}, nil
}

// Run executes the crawl: seeds the frontier, drains the pool, finalizes the
// sink, and returns the run counters. Per-URL failures never fail the run;
// only a sink that cannot finalize does.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	if !e.started.CompareAndSwap(false, true) {
		return Summary{}, errors.New("crawler: engine already ran")
	}
	start := time.Now()

	workers, err := pool.New(e.cfg.Workers, e.logger)
	if err != nil {
		return Summary{}, fmt.Errorf("start pool: %w", err)
	}

	e.visited.Add(e.cfg.SeedURL)
	e.submit(ctx, workers, e.cfg.SeedURL, 0)
	workers.Shutdown()

	if err := e.sink.Finalize(); err != nil {
		return Summary{}, fmt.Errorf("finalize sink: %w", err)
	}

	summary := Summary{
		RunID:             e.runID,
		PagesRecorded:     e.pages.Load(),
		LinksDiscovered:   e.discovered.Load(),
		DuplicatesSkipped: e.duplicates.Load(),
		FetchFailures:     e.failures.Load(),
		Duration:          time.Since(start),
	}
	e.logger.Info("crawl finished",
		zap.String("run_id", e.runID),
		zap.Int64("pages_recorded", summary.PagesRecorded),
		zap.Int64("links_discovered", summary.LinksDiscovered),
		zap.Int64("fetch_failures", summary.FetchFailures),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (e *Engine) submit(ctx context.Context, workers *pool.Pool, url string, depth int) {
	err := workers.Submit(func() {
		e.process(ctx, workers, url, depth)
	})
	if err != nil {
		// Submission happens either before Shutdown or from inside a task
		// the barrier is still counting, so this indicates a lifecycle bug.
		e.logger.Error("submit after pool shutdown",
			zap.String("run_id", e.runID),
			zap.String("url", url),
			zap.Error(err),
		)
	}
}

// process is the per-URL task body: fetch, extract, record, discover.
func (e *Engine) process(ctx context.Context, workers *pool.Pool, url string, depth int) {
	content, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.failures.Add(1)
		fetchErrors.Inc()
		e.logger.Warn("fetch failed",
			zap.String("run_id", e.runID),
			zap.String("url", url),
			zap.Int("depth", depth),
			zap.Error(err),
		)
		return
	}

	title := e.extractor.Title(content)
	links := e.extractor.Links(content, url)
	if links == nil {
		links = []string{}
	}

	e.sink.Append(Record{URL: url, Title: title, Links: links, Depth: depth})
	e.pages.Add(1)
	pagesFetched.Inc()

	if depth+1 > e.cfg.MaxDepth {
		return
	}
	for _, link := range links {
		if e.visited.Add(link) {
			e.discovered.Add(1)
			linksDiscovered.Inc()
			e.submit(ctx, workers, link, depth+1)
		} else {
			e.duplicates.Add(1)
			duplicateLinks.Inc()
		}
	}
}
