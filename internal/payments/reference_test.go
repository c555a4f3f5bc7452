package payments

import (
	"strings"
	"testing"
)

func TestNewReferenceShape(t *testing.T) {
	ref := NewReference()
	if !strings.HasPrefix(ref, "INK-") {
		t.Fatalf("reference %q missing namespace prefix", ref)
	}
	parts := strings.Split(ref, "-")
	if len(parts) != 3 {
		t.Fatalf("reference %q has %d segments, want 3", ref, len(parts))
	}
	if len(parts[2]) != 8 {
		t.Fatalf("random suffix %q has %d chars, want 8", parts[2], len(parts[2]))
	}
}

func TestNewReferenceUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := NewReference()
		if seen[ref] {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = true
	}
}
