package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/recapd/recap-cli/pkg/normalize"
	"github.com/recapd/recap-cli/pkg/synthesis"
)

// TracerName identifies pipeline spans.
const TracerName = "recap"

// Span attribute keys.
const (
	AttrRunID        = "run_id"
	AttrStage        = "stage"
	AttrShape        = "shape"
	AttrOperation    = "operation"
	AttrModel        = "model"
	AttrInputTokens  = "input_tokens"
	AttrOutputTokens = "output_tokens"
	AttrFieldErrors  = "field_errors"
	AttrErrorType    = "error_type"
)

// SpanProcessRun is the root span covering a full run.
const SpanProcessRun = "recap.process_run"

type runSpan = trace.Span

// Tracer provides distributed tracing for pipeline runs.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a pipeline tracer.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// StartRunSpan starts the root span for a run.
func (t *Tracer) StartRunSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanProcessRun,
		trace.WithAttributes(attribute.String(AttrRunID, runID)))
}

// StartStageSpan starts a span for one pipeline stage.
func (t *Tracer) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("recap.stage.%s", stage),
		trace.WithAttributes(attribute.String(AttrStage, stage)))
}

func setShapeAttributes(span trace.Span, entity *normalize.Entity) {
	span.SetAttributes(
		attribute.String(AttrShape, string(entity.Classification.Shape)),
		attribute.String(AttrOperation, string(entity.Classification.Operation)),
		attribute.Int(AttrFieldErrors, len(entity.Errors)),
	)
}

func setTokenAttributes(span trace.Span, report *synthesis.Report) {
	span.SetAttributes(
		attribute.String(AttrModel, report.Model),
		attribute.Int(AttrInputTokens, report.InputTokens),
		attribute.Int(AttrOutputTokens, report.OutputTokens),
	)
}

func recordError(span trace.Span, err error, errorType string) {
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(AttrErrorType, errorType))
	span.RecordError(err)
}

func recordSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
