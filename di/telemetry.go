package di

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/logger"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/observability"
	"github.com/kbukum/inject/typekey"
)

// observer reports resolutions, constructions and context lifecycles.
// metrics may be nil.
type observer struct {
	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.Metrics
}

func (o *observer) startResolve(c *Context, req Request) (context.Context, trace.Span) {
	return o.tracer.Start(context.Background(), observability.SpanResolve, trace.WithAttributes(
		attribute.String(observability.AttrRequestType, req.Type.String()),
		attribute.String(observability.AttrQualifier, req.Qualifier.String()),
		attribute.String(observability.AttrContextID, c.id),
	))
}

func (o *observer) endResolve(ctx context.Context, span trace.Span, c *Context, req Request, start time.Time, err error) {
	defer span.End()
	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
		o.failed(ctx, span, "resolve", c, req.Type, req.Qualifier, err)
	}
	if o.metrics != nil {
		o.metrics.RecordResolution(ctx, req.Type.String(), status, time.Since(start))
	}
}

func (o *observer) startInjection(name string, c *Context, t typekey.Key) (context.Context, trace.Span) {
	return o.tracer.Start(context.Background(), name, trace.WithAttributes(
		attribute.String(observability.AttrRequestType, t.String()),
		attribute.String(observability.AttrContextID, c.id),
	))
}

func (o *observer) endInjection(ctx context.Context, span trace.Span, op string, c *Context, t typekey.Key, err error) {
	defer span.End()
	if err != nil {
		o.failed(ctx, span, op, c, t, marker.Marker{}, err)
	}
}

func (o *observer) failed(ctx context.Context, span trace.Span, op string, c *Context, t typekey.Key, q marker.Marker, err error) {
	code := string(errors.CodeOf(err))
	span.SetAttributes(attribute.String(observability.AttrErrorCode, code))
	observability.SetSpanError(span, err)
	if o.metrics != nil {
		o.metrics.RecordFailure(ctx, code)
	}
	fields := logger.Merge(
		logger.RequestFields(t.String(), q.String()),
		logger.ErrorFields(op, err),
		logger.Fields(logger.FieldContextID, c.id),
	)
	if errors.IsConstructionFailure(err) {
		o.log.Error("Construction failed", fields)
		return
	}
	o.log.Warn("Injection contract violated", fields)
}

func (o *observer) constructed(c *Context, t typekey.Key, s Strategy) {
	if o.metrics != nil {
		o.metrics.RecordConstruction(context.Background(), t.String(), s.String())
	}
	if o.log.Enabled(zerolog.DebugLevel) {
		o.log.Debug("Constructed", logger.Fields(
			logger.FieldRequest, t.String(),
			logger.FieldStrategy, s.String(),
			logger.FieldContextID, c.id,
		))
	}
}

func (o *observer) contextOpened(c *Context, scope marker.Marker) {
	if o.metrics != nil {
		o.metrics.ContextOpened(context.Background(), scope.String())
	}
	o.log.Debug("Scope entered", logger.Fields(
		logger.FieldScope, scope.String(),
		logger.FieldContextID, c.id,
	))
}

func (o *observer) contextClosed(c *Context, released int) {
	if o.metrics != nil && c.parent != nil {
		for _, scope := range c.local {
			o.metrics.ContextClosed(context.Background(), scope.String())
		}
	}
	o.log.Debug("Context closed", logger.Fields(
		logger.FieldContextID, c.id,
		"released", released,
	))
}
