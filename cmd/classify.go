package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/recapd/recap-cli/config"
	"github.com/recapd/recap-cli/pkg/normalize"
	"github.com/recapd/recap-cli/pkg/payload"
)

// ClassifyCommandDeps holds the dependencies for classify commands.
type ClassifyCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultClassifyDeps returns the default dependencies for production use.
func DefaultClassifyDeps() *ClassifyCommandDeps {
	return &ClassifyCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewClassifyCommand creates the root classify command with all subcommands.
func NewClassifyCommand(deps *ClassifyCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultClassifyDeps()
	}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Inspect payload classification without calling the model",
		Long: `Classify webhook payloads against the ordered shape policy.

Classification is rule-based: each shape has a structural fingerprint, the
fingerprints are checked in a fixed priority order, and the first match
wins. Near-overlapping payloads (alert email vs. plain email, meeting vs.
calendar event) are disambiguated by that order rather than by guesswork.

Use this command to:
  - See which shape a payload resolves to, and via which fingerprint
  - Inspect the full normalized record for a payload
  - View the active rule set and its evaluation order

No model call is made; classify works offline.`,
		Example: `  # Classify a payload
  recap classify run payload.json

  # Show the normalized record as JSON
  recap classify run payload.json --extract --output json

  # View the active rules in priority order
  recap classify rules`,
	}

	cmd.AddCommand(newClassifyRunCommand(deps))
	cmd.AddCommand(newClassifyRulesCommand(deps))

	return cmd
}

// classifyResult is the printable outcome of classifying one payload.
type classifyResult struct {
	File        string            `json:"file"`
	Shape       string            `json:"shape"`
	Operation   string            `json:"operation,omitempty"`
	DetectedVia string            `json:"detected_via"`
	Artifact    string            `json:"artifact"`
	Entity      *normalize.Entity `json:"entity,omitempty"`
}

// newClassifyRunCommand creates the 'classify run' subcommand.
func newClassifyRunCommand(deps *ClassifyCommandDeps) *cobra.Command {
	var (
		extract bool
		format  string
	)

	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Classify one or more payload files",
		Long: `Classify payload files against the shape policy.

By default only the classification is shown. With --extract the payload is
also normalized and the full structured record is printed, including any
recoverable field errors.

Use "-" to read a single payload from stdin.`,
		Example: `  # Classify a payload
  recap classify run payload.json

  # Classify and show the normalized record
  recap classify run payload.json --extract

  # JSON output for scripting
  recap classify run payload.json --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if format != "" {
				cfg.OutputFormat = config.OutputFormat(format)
			}

			results := make([]classifyResult, 0, len(args))
			for _, path := range args {
				res, err := classifyOne(path, extract)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if handled, err := renderOutput(out, cfg.OutputFormat, results); handled {
				return err
			}

			for _, res := range results {
				fmt.Fprintf(out, "%s: shape=%s via=%q artifact=%s\n",
					res.File, res.Shape, res.DetectedVia, res.Artifact)
				if res.Entity != nil {
					printEntity(out, res.Entity)
				}
			}
			return nil
		},
	}

	// Silence usage on error - we provide our own messages
	cmd.SilenceUsage = true

	cmd.Flags().BoolVar(&extract, "extract", false, "also normalize the payload and print the record")
	cmd.Flags().StringVarP(&format, "output", "o", "", "output format: text, json, or yaml")

	return cmd
}

// classifyOne classifies a single payload file.
func classifyOne(path string, extract bool) (classifyResult, error) {
	data, err := readPayload(path)
	if err != nil {
		return classifyResult{}, err
	}

	doc, err := payload.Parse(data)
	if err != nil {
		return classifyResult{}, fmt.Errorf("%s: parsing payload: %w", path, err)
	}

	classification, err := normalize.Classify(doc)
	if err != nil {
		return classifyResult{}, fmt.Errorf("%s: %w", path, err)
	}

	res := classifyResult{
		File:        path,
		Shape:       string(classification.Shape),
		DetectedVia: classification.DetectedVia,
		Artifact:    classification.Shape.ArtifactName(),
	}

	if extract {
		entity, err := normalize.Extract(doc, classification)
		if err != nil {
			return classifyResult{}, fmt.Errorf("%s: extracting: %w", path, err)
		}
		res.Entity = entity
		res.Operation = string(entity.Classification.Operation)
	}

	return res, nil
}

// printEntity renders the high-value parts of a record as text.
func printEntity(out io.Writer, e *normalize.Entity) {
	if e.ID != nil {
		fmt.Fprintf(out, "  id: %s\n", *e.ID)
	}
	fmt.Fprintf(out, "  operation: %s\n", e.Classification.Operation)
	if e.Classification.Severity != "" {
		fmt.Fprintf(out, "  severity: %s\n", e.Classification.Severity)
	}
	for key, ts := range e.Timestamps {
		fmt.Fprintf(out, "  %s: %s\n", key, ts.Time.Format("2006-01-02T15:04:05Z07:00"))
	}
	for _, p := range e.Participants {
		fmt.Fprintf(out, "  %s: %s\n", p.Role, p.Identifier)
	}
	for _, fe := range e.Errors {
		fmt.Fprintf(out, "  error[%s]: %s: %s\n", fe.Kind, fe.Field, fe.Message)
	}
}

// newClassifyRulesCommand creates the 'classify rules' subcommand.
func newClassifyRulesCommand(deps *ClassifyCommandDeps) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the shape policy in evaluation order",
		Long: `Show the active classification rules.

Rules are evaluated top to bottom; the first fingerprint that matches a
payload decides its shape. The order is part of the contract: deletion and
removal fingerprints outrank creation fingerprints, and specific shapes
outrank their generic fallbacks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if format != "" {
				cfg.OutputFormat = config.OutputFormat(format)
			}

			rules := normalize.Rules()

			out := cmd.OutOrStdout()
			if handled, err := renderOutput(out, cfg.OutputFormat, rules); handled {
				return err
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PRIORITY\tSHAPE\tFINGERPRINT\tARTIFACT")
			for _, r := range rules {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					r.Priority, r.Shape, r.Fingerprint, r.Shape.ArtifactName())
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "", "output format: text, json, or yaml")

	return cmd
}
