// Package main provides the recap CLI entry point.
// recap turns raw webhook payloads into normalized records and
// model-written markdown reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recapd/recap-cli/cmd"
	"github.com/recapd/recap-cli/config"
	"github.com/recapd/recap-cli/pkg/logging"
)

// Global flags.
var (
	baseURL      string
	model        string
	timeout      time.Duration
	outputFormat string
	debug        bool
	jsonLogs     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recap",
	Short: "Normalize webhook payloads and synthesize markdown reports",
	Long: `recap ingests webhook payloads from workplace tools and produces
structured records plus model-written markdown summaries.

Supported sources include Gmail, Google Calendar, Google Drive, HubSpot,
Microsoft Teams, OneDrive, and Outlook. Each payload is matched against an
ordered shape policy, normalized into a typed record, and summarized by an
OpenAI-compatible model endpoint. Every shape writes a fixed artifact name,
so downstream consumers always know where to look.

COMMON WORKFLOWS:
  Process payloads:   recap process payload.json
  Inspect offline:    recap classify run payload.json --extract
  View shape policy:  recap classify rules

CONFIGURATION:
  Config file:  ~/.recap/config.yaml (or $RECAP_CONFIG_DIR/config.yaml)
  Environment:  RECAP_BASE_URL, RECAP_API_KEY, RECAP_MODEL, RECAP_OUTPUT_DIR
  Flags below override both.`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		if baseURL != "" {
			cfg.Synthesis.BaseURL = baseURL
		}
		if model != "" {
			cfg.Synthesis.Model = model
		}
		if timeout != 0 {
			cfg.Timeout = timeout
		}
		if outputFormat != "" {
			cfg.OutputFormat = config.OutputFormat(outputFormat)
		}
		if debug {
			cfg.Debug = true
		}
		if jsonLogs {
			cfg.JSONLogs = true
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}

		level := logging.LevelInfo
		if cfg.Debug {
			level = logging.LevelDebug
		}
		logging.SetGlobal(logging.NewLogger(&logging.Config{
			Level:       level,
			ServiceName: "recap",
			JSONFormat:  cfg.JSONLogs,
		}))

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible endpoint base URL")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model identifier for synthesis")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "synthesis request timeout")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: text, json, or yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")

	rootCmd.AddCommand(cmd.NewProcessCommand(nil))
	rootCmd.AddCommand(cmd.NewClassifyCommand(nil))
	rootCmd.AddCommand(cmd.NewVersionCommand())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
