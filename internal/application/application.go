// Package application holds the use-case contract and the RED instrumentation
// every service in this layer shares.
package application

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanPrefix = "UC."

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

// IDGenerator issues identifiers for new documents.
type IDGenerator interface {
	NewID() string
}

// Instruments bundles the logger, tracer and metrics a service records with.
type Instruments struct {
	tel observability.Observability
	log observability.Logger

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstruments(tel observability.Observability, service string) Instruments {
	tel = observability.Or(tel)
	m := tel.Metrics()
	return Instruments{
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

func (in Instruments) Logger() observability.Logger { return in.log }

func (in Instruments) Tracer() observability.Tracer { return in.tel.Tracer() }

// Begin opens a span for useCase and stores a use-case scoped logger on ctx.
// The returned Call must be ended exactly once.
func (in Instruments) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Call) {
	ctx, logger := logctx.WithFields(ctx, in.log, observability.F("use_case", useCase))
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tel.Tracer().Start(ctx, spanPrefix+spanName, attrs...)
	return ctx, &Call{
		in:      in,
		ctx:     ctx,
		useCase: useCase,
		span:    span,
		logger:  logger,
		start:   time.Now(),
		outcome: "success",
		status:  "OK",
	}
}

// External records one call to an outside provider.
func (in Instruments) External(peer, endpoint, outcome string, started time.Time) {
	in.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	in.extHistogram.Observe(time.Since(started).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
}

// Call is one in-flight use-case execution.
type Call struct {
	in      Instruments
	ctx     context.Context
	useCase string
	span    trace.Span
	logger  observability.Logger
	start   time.Time
	outcome string
	status  string
	fields  []observability.Field
}

func (c *Call) Logger() observability.Logger { return c.logger }

func (c *Call) Span() trace.Span { return c.span }

// Fail marks the call as failed with a machine-readable status code.
func (c *Call) Fail(status string) {
	c.outcome, c.status = "error", status
}

// SetStatus keeps the outcome but changes the reported status.
func (c *Call) SetStatus(status string) {
	c.status = status
}

// Add attaches fields to the completion log line.
func (c *Call) Add(fields ...observability.Field) {
	c.fields = append(c.fields, fields...)
}

// End closes the span, records the RED metrics and writes use_case_done.
// A non-nil err that was not classified with Fail is reported as ERROR.
func (c *Call) End(err error) {
	if err != nil && c.outcome != "error" {
		c.Fail("ERROR")
	}
	lat := time.Since(c.start).Seconds()

	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, c.status)
	} else {
		c.span.SetStatus(codes.Ok, c.status)
	}
	c.span.End()

	c.in.reqCounter.Add(1,
		observability.L("use_case", c.useCase),
		observability.L("outcome", c.outcome),
	)
	c.in.durHistogram.Observe(lat, observability.L("use_case", c.useCase))

	fields := []observability.Field{
		observability.F("outcome", c.outcome),
		observability.F("status", c.status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(c.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, c.fields...)
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	c.logger.Info("use_case_done", fields...)
}
