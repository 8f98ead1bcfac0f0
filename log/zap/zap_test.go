package zap

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/gracecache"
)

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("extended expiring entry", gracecache.Fields{"key": "k", "extendedTo": int64(42)})
	l.Info("info", nil)
	l.Warn("warn", nil)
	l.Error("error", gracecache.Fields{})

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	want := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Fatalf("entry %d level = %v, want %v", i, e.Level, want[i])
		}
	}
	ctx := entries[0].ContextMap()
	if ctx["key"] != "k" || ctx["extendedTo"] != int64(42) {
		t.Fatalf("fields = %v", ctx)
	}
}
