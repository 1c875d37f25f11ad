package conversation

import (
	"sync"
	"time"

	"github.com/hammamikhairi/voxcart/internal/domain"
)

// DefaultHistoryLimit caps how many messages a History retains.
const DefaultHistoryLimit = 10

// History is a bounded, append-only record of the exchange between the
// user and the assistant. When the limit is exceeded the oldest entries
// are discarded.
type History struct {
	mu    sync.RWMutex
	limit int
	msgs  []domain.Message
}

// NewHistory creates a history bounded to limit messages. A limit of
// zero or less falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// AddUser records an utterance spoken by the user.
func (h *History) AddUser(content string) {
	h.add(domain.Message{Role: domain.RoleUser, Content: content, Timestamp: time.Now()})
}

// AddAssistant records a response spoken by the assistant.
func (h *History) AddAssistant(content string) {
	h.add(domain.Message{Role: domain.RoleAssistant, Content: content, Timestamp: time.Now()})
}

func (h *History) add(msg domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.msgs = append(h.msgs, msg)
	if len(h.msgs) > h.limit {
		h.msgs = h.msgs[len(h.msgs)-h.limit:]
	}
}

// LastAssistant returns the most recent assistant message, if any.
func (h *History) LastAssistant() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.msgs) - 1; i >= 0; i-- {
		if h.msgs[i].Role == domain.RoleAssistant {
			return h.msgs[i].Content, true
		}
	}
	return "", false
}

// Messages returns a copy of the retained messages, oldest first.
func (h *History) Messages() []domain.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Len reports how many messages are currently retained.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.msgs)
}
