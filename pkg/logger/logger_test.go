package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerEmitsServiceAndFields(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"store_id":    "s1",
		"product_sku": "SKU-1",
	})
	logg.Info(ctx, "stock received")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output not json: %v (%s)", err, buf.String())
	}
	if entry["service"] != "test" {
		t.Fatalf("missing service field: %v", entry)
	}
	if entry["store_id"] != "s1" || entry["product_sku"] != "SKU-1" {
		t.Fatalf("context fields not propagated: %v", entry)
	}
	if entry["message"] != "stock received" {
		t.Fatalf("unexpected message: %v", entry)
	}
}

func TestLoggerErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	logg.Error(context.Background(), "boom", nil)

	if !strings.Contains(buf.String(), "stack") {
		t.Fatalf("expected stack field in error output: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel("debug"); got != zerolog.DebugLevel {
		t.Fatalf("parse debug: %v", got)
	}
	if got := ParseLevel(""); got != zerolog.InfoLevel {
		t.Fatalf("empty should default to info: %v", got)
	}
	if got := ParseLevel("nonsense"); got != zerolog.InfoLevel {
		t.Fatalf("invalid should default to info: %v", got)
	}
}
