package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentLedger, Output: &buf})

	logger.Info("recorded", FieldTxType, "income")
	logger.WithComponent(ComponentAuth).Warn("login failed")

	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "tx_type=income") {
		t.Errorf("missing ledger fields in %q", out)
	}
	if !strings.Contains(out, "component=auth") {
		t.Errorf("missing auth component in %q", out)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentLedger).
		WithEntry(0, "expense", "food", "12.50").
		WithError(errors.New("boom")).
		WithRequestID("")

	if _, ok := f[FieldTxID]; ok {
		t.Error("guest entries should not carry a tx id")
	}
	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request id should be omitted")
	}
	if f[FieldError] != "boom" || f[FieldAmount] != "12.50" {
		t.Errorf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != len(f)*2 {
		t.Errorf("ToSlice length mismatch")
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Component: ComponentHTTP}).With(FieldRequestID, "req_1")

	ctx := WithLogger(context.Background(), logger)
	got := FromContext(ctx)
	got.InfoContext(ctx, "inside")

	if got.Component() != ComponentHTTP {
		t.Fatalf("component = %q, want %q", got.Component(), ComponentHTTP)
	}
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Errorf("request id missing in %q", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()).Component() != ComponentApp {
		t.Error("default logger should use the app component")
	}
}
