package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCapitalizeWords(t *testing.T) {
	if got := CapitalizeWords("code review"); got != "Code Review" {
		t.Fatalf("unexpected capitalization: %q", got)
	}
}

func TestTruncateForDisplay(t *testing.T) {
	short := "hello"
	if got := TruncateForDisplay(short, 100); got != short {
		t.Fatalf("short strings must pass through unchanged, got %q", got)
	}

	long := strings.Repeat("line one\n", 50)
	got := TruncateForDisplay(long, 100)
	if len(got) >= len(long) {
		t.Fatalf("expected truncation, got %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "... (truncated)") {
		t.Fatalf("expected truncation marker, got %q", got)
	}

	if got := TruncateForDisplay(long, 0); got != long {
		t.Fatalf("max <= 0 must disable truncation")
	}
}

func TestTruncateForDisplayKeepsRunesWhole(t *testing.T) {
	// "héllo wörld" repeated; each é/ö is two bytes, so naive byte
	// slicing would cut through them at many limits.
	long := strings.Repeat("héllo wörld ", 20)
	for max := 1; max < 40; max++ {
		got := TruncateForDisplay(long, max)
		if !utf8.ValidString(got) {
			t.Fatalf("max=%d produced invalid UTF-8: %q", max, got)
		}
	}
}
