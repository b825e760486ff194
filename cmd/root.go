// Package cmd defines and implements the CLI commands for the sitemapper
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mpetrov/sitemapper/internal/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemapper",
		Short: "A bounded-depth concurrent web crawler that emits a JSON sitemap.",
		Long: `sitemapper crawls outward from a seed URL up to a maximum link depth,
fetching pages concurrently with a fixed worker pool, deduplicating
already-visited URLs, and writing the discovered pages to a JSON sitemap.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Scoped to this command tree rather than cobra.OnInitialize so
		// repeated construction never stacks initializers over stale
		// viper instances.
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			initConfig(v)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sitemapper.yaml)")

	cmd.AddCommand(newCrawlCmd(v))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// initConfig reads in the config file if one is present. A missing default
// config file is not an error; an unreadable explicit one is surfaced later
// by the subcommand's Load.
func initConfig(v *viper.Viper) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".sitemapper")
	}
	_ = v.ReadInConfig()
}

// Execute is the main entry point. Only configuration and startup errors
// produce a non-zero exit.
func Execute() {
	v := config.NewViper()
	if err := newRootCmd(v).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
