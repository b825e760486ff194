// Package config loads and validates crawl configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures every configuration knob that influences a crawl run.
// All values originate from Viper so the crawler can be configured via a
// config file, SITEMAPPER_* env vars, or CLI flags.
type Config struct {
	SeedURL        string
	MaxDepth       int
	Workers        int
	OutputPath     string
	UserAgent      string
	RequestTimeout time.Duration
	MaxRetries     int
	MetricsAddr    string
	DevLogging     bool
}

// NewViper returns a Viper instance with defaults and env binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SITEMAPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.max-depth", 1)
	v.SetDefault("crawl.workers", 4)
	v.SetDefault("crawl.output", "sitemap.json")
	v.SetDefault("crawl.user-agent", "sitemapper/1.0")
	v.SetDefault("crawl.request-timeout", 10*time.Second)
	v.SetDefault("crawl.max-retries", 3)
	v.SetDefault("crawl.metrics-addr", "")
	v.SetDefault("logging.development", false)
}

// Load constructs a Config by reading from Viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		SeedURL:        v.GetString("crawl.seed"),
		MaxDepth:       v.GetInt("crawl.max-depth"),
		Workers:        v.GetInt("crawl.workers"),
		OutputPath:     v.GetString("crawl.output"),
		UserAgent:      v.GetString("crawl.user-agent"),
		RequestTimeout: v.GetDuration("crawl.request-timeout"),
		MaxRetries:     v.GetInt("crawl.max-retries"),
		MetricsAddr:    v.GetString("crawl.metrics-addr"),
		DevLogging:     v.GetBool("logging.development"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SeedURL) == "" {
		return fmt.Errorf("crawl.seed must be set")
	}
	u, err := url.Parse(c.SeedURL)
	if err != nil {
		return fmt.Errorf("crawl.seed is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("crawl.seed must use http or https, got %q", u.Scheme)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("crawl.max-depth must be >= 0")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("crawl.workers must be > 0")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("crawl.output must be set")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("crawl.request-timeout must be > 0")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("crawl.max-retries must be >= 0")
	}
	return nil
}
