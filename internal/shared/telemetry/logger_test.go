package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("batch.complete", map[string]any{"batch_id": "b-1", "records": 3})

	line := strings.TrimSpace(buf.String())
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode log json %q: %v", line, err)
	}
	for _, key := range []string{"ts", "level", "msg", "batch_id", "records"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field %s in %v", key, payload)
		}
	}
	if payload["level"] != "info" || payload["msg"] != "batch.complete" {
		t.Fatalf("unexpected level/msg: %v", payload)
	}
	if payload["records"] != float64(3) {
		t.Fatalf("unexpected records field: %v", payload["records"])
	}
}

func TestErrorAndWarnLevels(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("file.skipped", nil)
	Error("file.failed", map[string]any{"err": "boom"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"level":"warn"`) || !strings.Contains(lines[1], `"level":"error"`) {
		t.Fatalf("unexpected levels: %q", lines)
	}
}
