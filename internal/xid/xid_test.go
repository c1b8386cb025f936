package xid

import (
	"strings"
	"testing"
)

func TestNewPrefixAndUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := New("bot")
		if !strings.HasPrefix(id, "bot_") {
			t.Fatalf("expected bot_ prefix, got %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if strings.Contains(New(""), "_") {
		t.Fatalf("expected bare id without prefix")
	}
}
