package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetup_JSONWithContext(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "debug", "json")
	t.Cleanup(func() { Setup(nil, "info", "text") })

	ctx := WithFormID(context.Background(), "contacto")
	FromContext(ctx).Debug("loaded", "steps", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if entry["form_id"] != "contacto" || entry["msg"] != "loaded" || entry["steps"] != float64(2) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "warn", "text")
	t.Cleanup(func() { Setup(nil, "info", "text") })

	WithFields("component", "store").Info("hidden")
	Logger().Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
