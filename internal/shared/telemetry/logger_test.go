package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWriteEmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	Warn("ocr.page_failed", map[string]any{
		"page":  3,
		"error": errors.New("tesseract: no image"),
		"msg":   "should not clobber",
	})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Fatalf("level = %v", entry["level"])
	}
	if entry["msg"] != "ocr.page_failed" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if entry["error"] != "tesseract: no image" {
		t.Fatalf("error = %v", entry["error"])
	}
	if entry["page"].(float64) != 3 {
		t.Fatalf("page = %v", entry["page"])
	}
}
