package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRandomGenerator_NewCode(t *testing.T) {
	t.Parallel()

	g := NewRandomGenerator()
	for i := 0; i < 100; i++ {
		code, err := g.NewCode(6)
		if err != nil {
			t.Fatalf("new code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("unexpected code length: got=%d want=6", len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("unexpected code character %q in %s", r, code)
			}
		}
	}

	if _, err := g.NewCode(0); err == nil {
		t.Fatalf("expected error for zero length")
	}
}

func TestRandomGenerator_NewIDIsUUID(t *testing.T) {
	t.Parallel()

	value, err := NewRandomGenerator().NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if _, err := uuid.Parse(value); err != nil {
		t.Fatalf("id is not a uuid: %s", value)
	}
}
