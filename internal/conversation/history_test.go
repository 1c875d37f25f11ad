package conversation

import (
	"fmt"
	"testing"

	"github.com/hammamikhairi/voxcart/internal/domain"
)

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 10; i++ {
		h.AddUser(fmt.Sprintf("message %d", i))
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	msgs := h.Messages()
	if msgs[0].Content != "message 7" || msgs[2].Content != "message 9" {
		t.Errorf("unexpected retained window: first=%q last=%q", msgs[0].Content, msgs[2].Content)
	}
}

func TestHistoryLastAssistant(t *testing.T) {
	h := NewHistory(DefaultHistoryLimit)

	if _, ok := h.LastAssistant(); ok {
		t.Fatal("LastAssistant() on empty history should report not found")
	}

	h.AddAssistant("first reply")
	h.AddUser("a question")
	h.AddAssistant("second reply")
	h.AddUser("another question")

	got, ok := h.LastAssistant()
	if !ok {
		t.Fatal("LastAssistant() should find a message")
	}
	if got != "second reply" {
		t.Errorf("LastAssistant() = %q, want %q", got, "second reply")
	}
}

func TestHistoryRoles(t *testing.T) {
	h := NewHistory(DefaultHistoryLimit)
	h.AddUser("hello")
	h.AddAssistant("hi there")

	msgs := h.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Len() = %d, want 2", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[1].Role != domain.RoleAssistant {
		t.Errorf("roles = %s, %s; want user, assistant", msgs[0].Role, msgs[1].Role)
	}
}

func TestHistoryDefaultLimit(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < DefaultHistoryLimit*2; i++ {
		h.AddUser("x")
	}
	if h.Len() != DefaultHistoryLimit {
		t.Errorf("Len() = %d, want %d", h.Len(), DefaultHistoryLimit)
	}
}
