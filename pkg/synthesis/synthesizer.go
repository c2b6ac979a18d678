package synthesis

import (
	"context"
	"fmt"
	"time"

	"github.com/recapd/recap-cli/pkg/normalize"
)

// Report is the rendered artifact. It carries the same identity as the
// entity it was built from so it can always be traced back to the source
// payload.
type Report struct {
	Shape        normalize.Shape `json:"shape"`
	Identity     *string         `json:"identity,omitempty"`
	ArtifactName string          `json:"artifact_name"`
	Body         string          `json:"body"`
	Model        string          `json:"model,omitempty"`
	InputTokens  int             `json:"input_tokens,omitempty"`
	OutputTokens int             `json:"output_tokens,omitempty"`
}

// Config holds synthesis settings.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns the default synthesis settings.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		MaxTokens:   2048,
		Temperature: 0.2,
		Timeout:     60 * time.Second,
	}
}

// Synthesizer turns normalized entities into reports via the generation
// service.
type Synthesizer struct {
	client Client
	config Config
}

// New creates a Synthesizer.
func New(client Client, config Config) *Synthesizer {
	return &Synthesizer{client: client, config: config}
}

// Synthesize renders the report for an entity. Failures and timeouts wrap
// ErrSynthesis; the caller must not write any artifact in that case.
func (s *Synthesizer) Synthesize(ctx context.Context, entity *normalize.Entity) (*Report, error) {
	prompt, err := BuildPrompt(entity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	resp, err := s.client.Complete(ctx, &CompletionRequest{
		Model:       s.config.Model,
		Prompt:      prompt,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	if resp.Content == "" {
		return nil, fmt.Errorf("%w: generation service returned empty content", ErrSynthesis)
	}

	return &Report{
		Shape:        entity.Classification.Shape,
		Identity:     entity.ID,
		ArtifactName: entity.Classification.Shape.ArtifactName(),
		Body:         resp.Content,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}
