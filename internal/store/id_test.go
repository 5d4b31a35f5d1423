package store

import (
	"strings"
	"testing"
)

func TestGenerateIDFormat(t *testing.T) {
	id, err := GenerateID("td", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "td-") {
		t.Errorf("id = %q, want td- prefix", id)
	}
	suffix := strings.TrimPrefix(id, "td-")
	if len(suffix) != idHashLength {
		t.Errorf("suffix length = %d, want %d", len(suffix), idHashLength)
	}
	for _, ch := range suffix {
		if !strings.ContainsRune(base36Alphabet, ch) {
			t.Errorf("suffix char %q outside base36 alphabet", ch)
		}
	}
}

func TestGenerateIDRequiresPrefix(t *testing.T) {
	if _, err := GenerateID("", nil); err == nil {
		t.Fatal("expected error for empty prefix")
	}
}

func TestGenerateIDRetriesOnCollision(t *testing.T) {
	calls := 0
	id, err := GenerateID("td", func(string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" || calls != 3 {
		t.Errorf("id = %q after %d calls", id, calls)
	}
}

func TestGenerateIDGivesUp(t *testing.T) {
	_, err := GenerateID("td", func(string) (bool, error) {
		return true, nil
	})
	if err == nil {
		t.Fatal("expected error when all attempts collide")
	}
}

func TestGenerateBlobID(t *testing.T) {
	id, err := GenerateBlobID(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "bl-") {
		t.Errorf("id = %q, want bl- prefix", id)
	}
}
