// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the topic-tree CLI.
// It grows a tree of search topics from a root keyword with a language
// model, colors each topic by search volume and renders the result as an
// interactive graph, either once (build) or behind a web form (serve).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-tree/internal/logging"
	"github.com/pdiddy/topic-tree/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	// logger is built from the log.* settings before any command runs.
	logger = zap.NewNop()
)

// rootCmd is the base command for the topic-tree CLI.
var rootCmd = &cobra.Command{
	Use:   "topic-tree",
	Short: "Grow and visualize a tree of search topics from a root keyword",
	Long: `topic-tree asks a language model for sub-topics of a root keyword, level by
level, and draws the result as an interactive graph colored by monthly
search volume. Newly discovered topics can be drafted into blog posts and
sent to WordPress.

Use build for a one-shot run that writes an HTML file, or serve for the
interactive page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}

		l, err := logging.New(viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./topic-tree.yaml or ~/.config/topic-tree/topic-tree.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")
	rootCmd.PersistentFlags().String("provider", "", "language model provider: openai or anthropic")
	rootCmd.PersistentFlags().String("model", "", "language model identifier")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("llm.model", rootCmd.PersistentFlags().Lookup("model"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("metrics.country_code", "US")
	v.SetDefault("wordpress.status", "draft")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("http.timeout", 120*time.Second)
}

// bindMetricsCache binds metrics.cache_path to the running command's
// --metrics-cache flag. Each command binds its own flag before it runs.
func bindMetricsCache(v *viper.Viper, cmd *cobra.Command) error {
	return v.BindPFlag("metrics.cache_path", cmd.Flags().Lookup("metrics-cache"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("topic-tree")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "topic-tree"))
		}
	}

	viper.SetEnvPrefix("TOPIC_TREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
