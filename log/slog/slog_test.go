package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/unkn0wn-root/gracecache"
)

func TestWritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug}))}

	l.Debug("extended expiring entry", gracecache.Fields{"key": "k", "format": "legacy"})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	if rec["level"] != "DEBUG" || rec["msg"] != "extended expiring entry" || rec["key"] != "k" || rec["format"] != "legacy" {
		t.Fatalf("unexpected record: %v", rec)
	}
}
