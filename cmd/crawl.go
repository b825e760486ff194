package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mpetrov/sitemapper/internal/api"
	"github.com/mpetrov/sitemapper/internal/config"
	"github.com/mpetrov/sitemapper/internal/crawler"
	"github.com/mpetrov/sitemapper/internal/extract"
	"github.com/mpetrov/sitemapper/internal/fetch"
	"github.com/mpetrov/sitemapper/internal/id/uuid"
	"github.com/mpetrov/sitemapper/internal/logging"
	"github.com/mpetrov/sitemapper/internal/sitemap"
)

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl outward from a seed URL and write a JSON sitemap",
		Long: `Starts a concurrent bounded-depth crawl from the seed URL. Individual
page failures are logged and counted but never fail the run; only invalid
configuration does.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("seed", "", "seed URL to start crawling from (required)")
	flags.Int("max-depth", 1, "maximum link depth; 0 crawls only the seed page")
	flags.Int("workers", 4, "number of concurrent fetch workers")
	flags.String("output", "sitemap.json", "path the JSON sitemap is written to")
	flags.Duration("request-timeout", 10*time.Second, "per-request fetch timeout")
	flags.Int("max-retries", 3, "retries per URL after the first failed attempt")
	flags.String("user-agent", "sitemapper/1.0", "User-Agent header for fetches")
	flags.String("metrics-addr", "", "serve /healthz and /metrics on this address while crawling")
	flags.Bool("dev-logging", false, "human-readable development logging")

	bind := map[string]string{
		"crawl.seed":            "seed",
		"crawl.max-depth":       "max-depth",
		"crawl.workers":         "workers",
		"crawl.output":          "output",
		"crawl.request-timeout": "request-timeout",
		"crawl.max-retries":     "max-retries",
		"crawl.user-agent":      "user-agent",
		"crawl.metrics-addr":    "metrics-addr",
		"logging.development":   "dev-logging",
	}
	for key, flag := range bind {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(flag)))
	}
	return cmd
}

func runCrawl(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.DevLogging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	runID, err := uuid.New().NewID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}

	sink, err := sitemap.NewFileSink(cfg.OutputPath, logger)
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}
	fetcher := fetch.NewHTTP(cfg.RequestTimeout, cfg.UserAgent, cfg.MaxRetries, logger)

	engine, err := crawler.New(
		crawler.Config{
			SeedURL:  cfg.SeedURL,
			MaxDepth: cfg.MaxDepth,
			Workers:  cfg.Workers,
		},
		fetcher,
		htmlExtractor{},
		sink,
		runID,
		logger,
	)
	if err != nil {
		return fmt.Errorf("init crawler: %w", err)
	}

	if cfg.MetricsAddr != "" {
		metrics := api.NewServer(cfg.MetricsAddr, logger)
		metrics.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metrics.Stop(stopCtx); err != nil {
				logger.Warn("metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	logger.Info("starting crawl",
		zap.String("run_id", runID),
		zap.String("seed", cfg.SeedURL),
		zap.Int("max_depth", cfg.MaxDepth),
		zap.Int("workers", cfg.Workers),
	)

	summary, err := engine.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run crawl: %w", err)
	}

	printSummary(cmd, summary, cfg.OutputPath)
	return nil
}

func printSummary(cmd *cobra.Command, summary crawler.Summary, outputPath string) {
	tbl := table.New("Metric", "Value").WithWriter(cmd.OutOrStdout())
	tbl.AddRow("Run ID", summary.RunID)
	tbl.AddRow("Pages recorded", summary.PagesRecorded)
	tbl.AddRow("Links discovered", summary.LinksDiscovered)
	tbl.AddRow("Duplicates skipped", summary.DuplicatesSkipped)
	tbl.AddRow("Fetch failures", summary.FetchFailures)
	tbl.AddRow("Duration", summary.Duration.Round(time.Millisecond))
	tbl.Print()
	fmt.Fprintf(cmd.OutOrStdout(), "\nSitemap written to %s\n", outputPath)
}

// htmlExtractor adapts the extract package functions to the engine's
// Extractor interface.
type htmlExtractor struct{}

func (htmlExtractor) Links(content, baseURL string) []string {
	return extract.Links(content, baseURL)
}

func (htmlExtractor) Title(content string) string {
	return extract.Title(content)
}
