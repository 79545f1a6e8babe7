package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentReport)
	l.Info("built", FieldRecords, 3)
	l.WithComponent(ComponentSink).Warn("slow")

	out := buf.String()
	if !strings.Contains(out, "component=report") || !strings.Contains(out, "records=3") {
		t.Fatalf("missing report fields: %s", out)
	}
	if !strings.Contains(out, "component=sink") || strings.Count(out, "component=") != 2 {
		t.Fatalf("component should appear once per line: %s", out)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithReport("dashboard", 10).WithError(nil).WithWindow("2021-12-31 00:00:00", "M")
	if _, ok := f[FieldError]; ok {
		t.Fatalf("nil error must not be recorded")
	}
	if f[FieldReport] != "dashboard" || f[FieldRecords] != 10 || f[FieldWindow] != "M" {
		t.Fatalf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("ToSlice should flatten key/value pairs")
	}
}

func TestWithKeepsAttributesAcrossComponents(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentHTTP).With(FieldRequestID, "req-1")
	l.WithComponent(ComponentReport).Info("built")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-1") || !strings.Contains(out, "component=report") {
		t.Fatalf("expected request id and rebound component: %s", out)
	}
	if strings.Contains(out, "component=http") {
		t.Fatalf("old component must not leak: %s", out)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), newBufferLogger(&buf, ComponentHTTP).With(FieldRequestID, "req-2"))
	FromContext(ctx).InfoContext(ctx, "handled")

	if !strings.Contains(buf.String(), "request_id=req-2") {
		t.Fatalf("logger from context lost its attributes: %s", buf.String())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentApp))

	sl.LogHTTPEnd(context.Background(), httptest.NewRequest(http.MethodGet, "/api/events?range=W", nil), 400, 5, "127.0.0.1")
	sl.LogReportBuilt(context.Background(), "events", 12, "data/report.json")
	sl.LogError(context.Background(), "boom", errors.New("bad"), ComponentMarket, OpEnrich, nil)

	out := buf.String()
	if strings.Contains(out, "component=app") {
		t.Errorf("structured entries should carry their own component:\n%s", out)
	}
	for _, want := range []string{"level=WARN", "status_code=400", "component=http", "saved_path=data/report.json", "component=report", "level=ERROR", "error=bad", "component=market"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}
