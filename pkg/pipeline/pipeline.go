// Package pipeline orchestrates payload normalization and report synthesis.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/recapd/recap-cli/pkg/logging"
	"github.com/recapd/recap-cli/pkg/normalize"
	"github.com/recapd/recap-cli/pkg/payload"
	"github.com/recapd/recap-cli/pkg/synthesis"
)

// Status tracks where a run is in its lifecycle.
type Status string

const (
	StatusPending      Status = "pending"
	StatusExtracting   Status = "extracting"
	StatusSynthesizing Status = "synthesizing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// ErrShapeMismatch is returned when a caller-supplied shape hint disagrees
// with what the classifier infers from the payload.
var ErrShapeMismatch = errors.New("shape hint does not match classified shape")

// Request describes one payload to process.
type Request struct {
	// RunID identifies the run. Generated when empty.
	RunID string

	// Payload is the raw webhook body, either a bare event or a
	// {"result": ...} envelope.
	Payload []byte

	// ShapeHint optionally asserts the expected shape. The hint never
	// overrides classification; a disagreement fails the run.
	ShapeHint normalize.Shape

	// OutputDir receives the report artifact. Empty disables writing.
	OutputDir string
}

// Result is the outcome of a run. Entity is populated once extraction
// succeeds, Report and ArtifactPath only on full completion.
type Result struct {
	RunID        string
	Status       Status
	Stage        string
	Entity       *normalize.Entity
	Report       *synthesis.Report
	ArtifactPath string
	Duration     time.Duration
}

// Pipeline runs the two stages: extraction then synthesis.
type Pipeline struct {
	synthesizer *synthesis.Synthesizer
	logger      logging.Logger
	metrics     *Metrics
	tracer      *Tracer
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(t *Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

// New creates a pipeline around a synthesizer.
func New(synthesizer *synthesis.Synthesizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		synthesizer: synthesizer,
		logger:      logging.MustGlobal(),
		tracer:      NewTracer(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.logger = p.logger.With(logging.F("component", "pipeline"))
	return p
}

// Process runs one payload through both stages. The raw payload is read
// only during extraction; synthesis sees the normalized entity alone.
func (p *Pipeline) Process(ctx context.Context, req *Request) (*Result, error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	started := time.Now()
	result := &Result{RunID: req.RunID, Status: StatusPending}

	ctx, span := p.tracer.StartRunSpan(ctx, req.RunID)
	defer span.End()

	p.logger.Info("Starting run",
		logging.F("run_id", req.RunID),
		logging.F("payload_bytes", len(req.Payload)))

	entity, err := p.runExtraction(ctx, req, result)
	if err != nil {
		return result, p.fail(result, span, "extraction", started, err)
	}
	result.Entity = entity

	report, err := p.runSynthesis(ctx, entity, result)
	if err != nil {
		return result, p.fail(result, span, "synthesis", started, err)
	}
	result.Report = report

	if req.OutputDir != "" {
		path, err := writeArtifact(req.OutputDir, report.ArtifactName, report.Body)
		if err != nil {
			return result, p.fail(result, span, "artifact", started, err)
		}
		result.ArtifactPath = path
		if p.metrics != nil {
			p.metrics.RecordArtifact(string(entity.Classification.Shape))
		}
	}

	result.Status = StatusCompleted
	result.Duration = time.Since(started)
	recordSuccess(span)

	p.logger.Info("Run completed",
		logging.F("run_id", req.RunID),
		logging.F("shape", string(entity.Classification.Shape)),
		logging.F("artifact", result.ArtifactPath),
		logging.F("duration", result.Duration))

	return result, nil
}

// runExtraction executes stage 1: classification plus extraction.
func (p *Pipeline) runExtraction(ctx context.Context, req *Request, result *Result) (*normalize.Entity, error) {
	result.Status = StatusExtracting
	result.Stage = "extraction"

	_, span := p.tracer.StartStageSpan(ctx, "extraction")
	defer span.End()

	started := time.Now()

	doc, err := payload.Parse(req.Payload)
	if err != nil {
		recordError(span, err, "payload_parse")
		p.recordStage("extraction", "failed", started)
		return nil, fmt.Errorf("parsing payload: %w", err)
	}

	classification, err := normalize.Classify(doc)
	if err != nil {
		recordError(span, err, "unrecognized_shape")
		p.recordStage("extraction", "failed", started)
		return nil, err
	}

	if req.ShapeHint != "" && req.ShapeHint != classification.Shape {
		err := fmt.Errorf("%w: hint %s, classified %s",
			ErrShapeMismatch, req.ShapeHint, classification.Shape)
		recordError(span, err, "shape_mismatch")
		p.recordStage("extraction", "failed", started)
		return nil, err
	}

	entity, err := normalize.Extract(doc, classification)
	if err != nil {
		recordError(span, err, "extraction")
		p.recordStage("extraction", "failed", started)
		return nil, fmt.Errorf("extracting %s: %w", classification.Shape, err)
	}

	setShapeAttributes(span, entity)
	recordSuccess(span)
	p.recordStage("extraction", "completed", started)

	if p.metrics != nil {
		p.metrics.RecordClassification(
			string(classification.Shape), string(classification.Operation))
		for _, fe := range entity.Errors {
			p.metrics.RecordFieldError(string(classification.Shape), string(fe.Kind))
		}
	}

	p.logger.Debug("Extraction completed",
		logging.F("run_id", result.RunID),
		logging.F("shape", string(classification.Shape)),
		logging.F("operation", string(classification.Operation)),
		logging.F("field_errors", len(entity.Errors)),
		logging.F("duration", time.Since(started)))

	return entity, nil
}

// runSynthesis executes stage 2: LLM report generation.
func (p *Pipeline) runSynthesis(ctx context.Context, entity *normalize.Entity, result *Result) (*synthesis.Report, error) {
	result.Status = StatusSynthesizing
	result.Stage = "synthesis"

	ctx, span := p.tracer.StartStageSpan(ctx, "synthesis")
	defer span.End()

	started := time.Now()

	report, err := p.synthesizer.Synthesize(ctx, entity)
	duration := time.Since(started)

	if err != nil {
		recordError(span, err, "synthesis")
		p.recordStage("synthesis", "failed", started)
		if p.metrics != nil {
			p.metrics.RecordSynthesis("", "failed", duration.Seconds(), 0, 0)
		}
		return nil, err
	}

	setTokenAttributes(span, report)
	recordSuccess(span)
	p.recordStage("synthesis", "completed", started)

	if p.metrics != nil {
		p.metrics.RecordSynthesis(report.Model, "completed",
			duration.Seconds(), report.InputTokens, report.OutputTokens)
	}

	p.logger.Debug("Synthesis completed",
		logging.F("run_id", result.RunID),
		logging.F("model", report.Model),
		logging.F("input_tokens", report.InputTokens),
		logging.F("output_tokens", report.OutputTokens),
		logging.F("duration", duration))

	return report, nil
}

// fail marks the run failed. No artifact is ever written for a failed run.
func (p *Pipeline) fail(result *Result, span runSpan, stage string, started time.Time, err error) error {
	result.Status = StatusFailed
	result.Stage = stage
	result.Duration = time.Since(started)

	recordError(span, err, stage)

	p.logger.Error("Run failed",
		logging.Err(err),
		logging.F("run_id", result.RunID),
		logging.F("stage", stage))

	return fmt.Errorf("run %s failed at %s: %w", result.RunID, stage, err)
}

func (p *Pipeline) recordStage(stage, status string, started time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordStage(stage, status, time.Since(started).Seconds())
}

// ProcessBatch processes payloads in sequence. A failed payload does not
// stop the batch; the last error is returned alongside partial results.
func (p *Pipeline) ProcessBatch(ctx context.Context, reqs []*Request) ([]*Result, error) {
	results := make([]*Result, 0, len(reqs))
	var lastErr error

	for _, req := range reqs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		result, err := p.Process(ctx, req)
		if err != nil {
			p.logger.Error("Failed to process payload",
				logging.Err(err),
				logging.F("run_id", result.RunID))
			lastErr = err
		}
		results = append(results, result)
	}

	return results, lastErr
}
