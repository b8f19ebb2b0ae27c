package httpapi

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func tracedContext() context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestStartSpan_OnlyHandlersUnderParent(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		span    string
		wantNew bool
	}{
		{name: "handler span", ctx: tracedContext(), span: "httpapi.Handler.GetRoster", wantNew: true},
		{name: "middleware span", ctx: tracedContext(), span: "httpapi.RequestLogging"},
		{name: "helper span", ctx: tracedContext(), span: "httpapi.writeError"},
		{name: "untraced route", ctx: context.Background(), span: "httpapi.Handler.Healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, span := startSpan(tt.ctx, tt.span)
			defer span.End()
			if created := got != tt.ctx; created != tt.wantNew {
				t.Fatalf("startSpan(%q) created=%v want=%v", tt.span, created, tt.wantNew)
			}
		})
	}
}
