package telemetry

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of storefront spans
const TracerName = "storefront"

// Span attribute keys shared by the services
const (
	AttrOrderID     = attribute.Key("storefront.order_id")
	AttrProductID   = attribute.Key("storefront.product_id")
	AttrVariationID = attribute.Key("storefront.variation_id")
	AttrQuantity    = attribute.Key("storefront.quantity")
	AttrOutcome     = attribute.Key("storefront.outcome")
	AttrStep        = attribute.Key("storefront.checkout_step")
	AttrCustomerID  = attribute.Key("storefront.customer_id")
	AttrRequestID   = attribute.Key("request_id")
)

// StartServiceSpan starts an internal span named "{service}.{method}".
// The caller must end the span.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "add_to_cart")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records err on the span. Domain errors are expected outcomes
// (bad input, missing resources) and only annotate the span; everything else,
// including persistence failures, marks the span as failed.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code != shared.CodePersistenceFailure {
		span.SetAttributes(attribute.String("error.code", domainErr.Code))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the trace id of the span in ctx, or ""
func TraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
