package observability

import (
	"errors"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
)

func TestIsHealthRequestLog(t *testing.T) {
	if !isHealthRequestLog("http_request", []any{"http_path", "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if isHealthRequestLog("http_request", []any{"http_path", "/v1/standings"}) {
		t.Fatalf("did not expect non-health log to be skipped")
	}
	if isHealthRequestLog("qstash job published", []any{"http_path", "/healthz"}) {
		t.Fatalf("did not expect non-http_request event to be skipped")
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"user_id", "u-42", "week", 2, "error", errors.New("locked"), "dangling"})
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "user_id" || attrs[0].Value.AsString() != "u-42" {
		t.Fatalf("unexpected user_id attribute")
	}
	if attrs[1].Key != "week" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected week attribute")
	}
	if attrs[2].Value.AsString() != "locked" {
		t.Fatalf("unexpected error attribute")
	}
	if attrs[3].Key != "dangling" || attrs[3].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected dangling attribute")
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{"matched": 41, "unmatched": []string{"JAX:Travis Etienne"}}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	if items := v.AsMap(); len(items) != 2 || items[0].Key != "matched" {
		t.Fatalf("unexpected map items: %v", items)
	}
}
