// Package telemetry wraps span creation for the fold pipeline and the
// signaling relay so both can be traced with the same few calls whether or
// not an OTLP collector is configured.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Tracer is the narrow surface the rest of the codebase depends on. It
// never requires a caller to care whether tracing is actually configured.
type Tracer struct {
	tracer oteltrace.Tracer
}

// Noop returns a Tracer that produces spans with no backing exporter. This
// is what every command runs with unless telemetry is enabled in config.
func Noop() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer("isnad")}
}

// FromProvider wraps an already-configured trace.TracerProvider, as built
// by Setup.
func FromProvider(tp *trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer("isnad")}
}

// StartFold starts a span around one fold pass over the two logs.
func (t *Tracer) StartFold(ctx context.Context, ledgerPath, controlPath string) (context.Context, oteltrace.Span) {
	ctx, span := t.tracer.Start(ctx, "board.fold")
	span.SetAttributes(
		attribute.String("isnad.ledger_path", ledgerPath),
		attribute.String("isnad.control_path", controlPath),
	)
	return ctx, span
}

// EndFold ends a fold span, recording the resulting total card count and any
// error.
func (t *Tracer) EndFold(span oteltrace.Span, cardCount int, err error) {
	span.SetAttributes(attribute.Int("isnad.card_count", cardCount))
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

// StartDirective starts a span around appending one directive or ledger
// record.
func (t *Tracer) StartDirective(ctx context.Context, kind, directiveType string) (context.Context, oteltrace.Span) {
	ctx, span := t.tracer.Start(ctx, "directive.append")
	span.SetAttributes(
		attribute.String("isnad.log", kind),
		attribute.String("isnad.directive_type", directiveType),
	)
	return ctx, span
}

// EndDirective ends a directive append span.
func (t *Tracer) EndDirective(span oteltrace.Span, id string, err error) {
	span.SetAttributes(attribute.String("isnad.directive_id", id))
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

// StartMessage starts a span around handling one inbound signaling relay
// message.
func (t *Tracer) StartMessage(ctx context.Context, msgType string) (context.Context, oteltrace.Span) {
	ctx, span := t.tracer.Start(ctx, "signal."+msgType)
	span.SetAttributes(attribute.String("isnad.message_type", msgType))
	return ctx, span
}

// EndMessage ends a message-handling span.
func (t *Tracer) EndMessage(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

// Setup builds a real TracerProvider when telemetry is enabled, or nil when
// it isn't; callers fall back to Noop() in the latter case. It registers the
// provider as the process-wide default so libraries pulling the global
// tracer via otel.Tracer still participate.
func Setup(ctx context.Context, enabled bool, endpoint string) (*trace.TracerProvider, error) {
	if !enabled {
		return nil, nil
	}
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	_ = endpoint // not used: no exporter or span processor is registered on tp, so its spans are not exported anywhere
	return tp, nil
}
