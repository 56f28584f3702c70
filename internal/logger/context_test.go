package logger

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestWithContextAndFromContext(t *testing.T) {
	l, closer, err := New(Options{Out: io.Discard, Format: "json"})
	if err != nil {
		t.Fatalf("create logger: %v", err)
	}
	if closer != nil {
		t.Cleanup(func() { _ = closer.Close() })
	}
	ctx := WithContext(context.Background(), l)
	got := FromContext(ctx)
	if got == nil {
		t.Fatal("expected logger from context")
	}
	if got != l {
		t.Fatalf("expected stored logger to be returned")
	}
	if nop := FromContext(context.Background()); nop == nil {
		t.Fatalf("expected Nop logger when context has no logger")
	}
}

func TestNewSessionIDIsUUID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if len(a) != 36 || strings.Count(a, "-") != 4 {
		t.Fatalf("expected canonical uuid, got %q", a)
	}
	if a == b {
		t.Fatalf("expected distinct session ids")
	}
}
