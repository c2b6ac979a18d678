// Package cmd provides CLI commands for the recap tool.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recapd/recap-cli/config"
	"github.com/recapd/recap-cli/pkg/normalize"
	"github.com/recapd/recap-cli/pkg/pipeline"
	"github.com/recapd/recap-cli/pkg/synthesis"
)

// ProcessCommandDeps holds the dependencies for the process command.
type ProcessCommandDeps struct {
	LoadConfig    func() (*config.CLIConfig, error)
	BuildPipeline func(cfg *config.CLIConfig) (*pipeline.Pipeline, error)
}

// DefaultProcessDeps returns the default dependencies for production use.
func DefaultProcessDeps() *ProcessCommandDeps {
	return &ProcessCommandDeps{
		LoadConfig:    config.LoadConfig,
		BuildPipeline: buildPipeline,
	}
}

// buildPipeline wires the synthesis client and pipeline from configuration.
func buildPipeline(cfg *config.CLIConfig) (*pipeline.Pipeline, error) {
	client := synthesis.NewHTTPClient(synthesis.HTTPClientConfig{
		BaseURL: cfg.Synthesis.BaseURL,
		APIKey:  cfg.Synthesis.APIKey,
		Timeout: cfg.Timeout,
	})

	synthCfg := synthesis.DefaultConfig()
	synthCfg.Model = cfg.Synthesis.Model
	synthCfg.Timeout = cfg.Timeout
	if cfg.Synthesis.MaxTokens > 0 {
		synthCfg.MaxTokens = cfg.Synthesis.MaxTokens
	}
	if cfg.Synthesis.Temperature > 0 {
		synthCfg.Temperature = cfg.Synthesis.Temperature
	}

	return pipeline.New(
		synthesis.New(client, synthCfg),
		pipeline.WithMetrics(pipeline.DefaultMetrics()),
	), nil
}

// processSummary is the per-payload outcome printed by the process command.
type processSummary struct {
	RunID    string `json:"run_id"`
	File     string `json:"file"`
	Status   string `json:"status"`
	Shape    string `json:"shape,omitempty"`
	Artifact string `json:"artifact,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewProcessCommand creates the process command.
func NewProcessCommand(deps *ProcessCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultProcessDeps()
	}

	var (
		shapeHint string
		outputDir string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Run webhook payloads through normalization and report synthesis",
		Long: `Process webhook payloads end to end.

Each payload is classified against the ordered shape policy, normalized into
a structured record, and handed to the model for report synthesis. On
success a markdown artifact named after the payload's shape lands in the
output directory. A payload that fails at any stage produces no artifact.

Payloads may be bare events or wrapped in a {"result": ...} envelope.
Use "-" to read a single payload from stdin.`,
		Example: `  # Process a saved webhook payload
  recap process payload.json

  # Process several payloads into a custom directory
  recap process inbox/*.json --output-dir ./reports

  # Pipe a payload in and assert its shape
  cat alert.json | recap process - --shape alert_email

  # Machine-readable run summaries
  recap process payload.json --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			if format != "" {
				cfg.OutputFormat = config.OutputFormat(format)
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			dir, err := cfg.ResolveOutputDir()
			if err != nil {
				return fmt.Errorf("resolving output directory: %w", err)
			}

			p, err := deps.BuildPipeline(cfg)
			if err != nil {
				return fmt.Errorf("building pipeline: %w", err)
			}

			summaries := make([]processSummary, 0, len(args))
			failures := 0

			for _, path := range args {
				summary := runOne(cmd.Context(), p, path, shapeHint, dir)
				if summary.Status != string(pipeline.StatusCompleted) {
					failures++
				}
				summaries = append(summaries, summary)
			}

			out := cmd.OutOrStdout()
			if handled, err := renderOutput(out, cfg.OutputFormat, summaries); handled {
				if err != nil {
					return err
				}
			} else {
				for _, s := range summaries {
					if s.Error != "" {
						fmt.Fprintf(out, "%s: %s (%s)\n", s.File, s.Status, s.Error)
						continue
					}
					fmt.Fprintf(out, "%s: %s shape=%s artifact=%s\n", s.File, s.Status, s.Shape, s.Artifact)
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d payloads failed", failures, len(args))
			}
			return nil
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	cmd.Flags().StringVar(&shapeHint, "shape", "", "expected shape; processing fails if classification disagrees")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for report artifacts (default from config)")
	cmd.Flags().StringVarP(&format, "output", "o", "", "output format: text, json, or yaml")

	return cmd
}

// runOne processes a single payload file and summarizes the outcome.
func runOne(ctx context.Context, p *pipeline.Pipeline, path, shapeHint, dir string) processSummary {
	summary := processSummary{File: path}

	data, err := readPayload(path)
	if err != nil {
		summary.Status = string(pipeline.StatusFailed)
		summary.Error = err.Error()
		return summary
	}

	result, err := p.Process(ctx, &pipeline.Request{
		Payload:   data,
		ShapeHint: normalize.Shape(shapeHint),
		OutputDir: dir,
	})

	summary.RunID = result.RunID
	summary.Status = string(result.Status)
	if result.Entity != nil {
		summary.Shape = string(result.Entity.Classification.Shape)
	}
	summary.Artifact = result.ArtifactPath
	if err != nil {
		summary.Error = err.Error()
	}
	return summary
}
