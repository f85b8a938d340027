package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	defer Reset()

	var first, second bytes.Buffer
	Init(Options{Level: "debug", Output: &first, Service: "storefront"})
	Init(Options{Level: "error", Output: &second})

	log := Get()
	log.Debug().Msg("hello")
	if second.Len() != 0 {
		t.Fatalf("second Init should be ignored")
	}
	entry := decodeLast(t, &first)
	if entry["service"] != "storefront" {
		t.Fatalf("expected service field, got %v", entry)
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}

func TestFallback(t *testing.T) {
	var buf bytes.Buffer
	Fallback(zerolog.New(&buf), "catalog", "stale_cache", "timeout")

	entry := decodeLast(t, &buf)
	if entry["level"] != "warn" || entry["source"] != "catalog" || entry["fallback_to"] != "stale_cache" || entry["reason"] != "timeout" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestPerformance_SlowIsWarn(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	Performance(log, "products", 10*time.Millisecond, nil)
	if decodeLast(t, &buf)["level"] != "debug" {
		t.Fatalf("fast operation should log at debug")
	}

	Performance(log, "products", 2*time.Second, map[string]any{"role": "admin"})
	entry := decodeLast(t, &buf)
	if entry["level"] != "warn" || entry["role"] != "admin" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARNING") != zerolog.WarnLevel {
		t.Fatalf("expected warn")
	}
	if parseLevel("bogus") != zerolog.InfoLevel {
		t.Fatalf("expected info default")
	}
}
