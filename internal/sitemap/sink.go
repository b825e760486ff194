// Package sitemap persists crawl records as a JSON sitemap file.
package sitemap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/mpetrov/sitemapper/internal/crawler"
)

// FileSink accumulates records in memory and writes them out as a single
// JSON array on Finalize. Appends preserve arrival order, which is
// nondeterministic across concurrent workers. A run with zero records still
// produces a well-formed empty array.
type FileSink struct {
	path   string
	logger *zap.Logger

	mu        sync.Mutex
	records   []crawler.Record
	finalized bool
}

// NewFileSink returns a sink that will write to path.
func NewFileSink(path string, logger *zap.Logger) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("sitemap: output path must be set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSink{
		path:    path,
		logger:  logger,
		records: make([]crawler.Record, 0),
	}, nil
}

// Append adds one record. Safe for concurrent use.
func (s *FileSink) Append(rec crawler.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		s.logger.Error("append after finalize dropped", zap.String("url", rec.URL))
		return
	}
	s.records = append(s.records, rec)
}

// Finalize writes the sitemap file. Calling it more than once is an error.
func (s *FileSink) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return fmt.Errorf("sitemap: already finalized")
	}
	s.finalized = true

	payload, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sitemap: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create sitemap dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write sitemap %s: %w", s.path, err)
	}
	s.logger.Info("sitemap written",
		zap.String("path", s.path),
		zap.Int("records", len(s.records)),
	)
	return nil
}

// Len reports how many records have been appended.
func (s *FileSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
