package logger_test

import (
	"testing"

	"github.com/jackrehmann/fade-scalps/logger"
	"github.com/jackrehmann/fade-scalps/testutils"
)

func TestMockLogger(t *testing.T) {
	l := testutils.NewMockLogger()
	l.Info("hello", logger.String("k", "v"), logger.Int64("n", 7))
	if got := l.LastMessage(); got != "hello" {
		t.Fatalf("expected last message 'hello', got %q", got)
	}

	fields := l.LastFields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != "k" || fields[0].String != "v" {
		t.Fatalf("string field = %+v, want k=v", fields[0])
	}
	if fields[1].Key != "n" || fields[1].Integer != 7 {
		t.Fatalf("int field = %+v, want n=7", fields[1])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	l := logger.NewNop()
	// Must not panic or block.
	l.Info("a")
	l.Warn("b", logger.Float64("x", 1.5))
	l.Error("c", logger.Err(nil))
}
