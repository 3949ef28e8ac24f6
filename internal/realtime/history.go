package realtime

import (
	"sync"
)

// ChatHistoryLimit is how many recent chat messages are retained.
const ChatHistoryLimit = 100

// ChatHistory is a bounded store of the most recent chat messages.
// Implementations keep at most their capacity, dropping the oldest entry.
type ChatHistory interface {
	Append(msg ChatMessage) error
	// Recent returns the retained messages in arrival order.
	Recent() ([]ChatMessage, error)
}

// MemoryHistory is an in-memory ring buffer of chat messages.
type MemoryHistory struct {
	mu    sync.Mutex
	buf   []ChatMessage
	start int
	size  int
}

// NewMemoryHistory creates a history retaining at most capacity messages.
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = ChatHistoryLimit
	}
	return &MemoryHistory{buf: make([]ChatMessage, capacity)}
}

// Append implements ChatHistory. Never fails.
func (m *MemoryHistory) Append(msg ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.size < len(m.buf) {
		m.buf[(m.start+m.size)%len(m.buf)] = msg
		m.size++
		return nil
	}
	// Full: overwrite the oldest slot.
	m.buf[m.start] = msg
	m.start = (m.start + 1) % len(m.buf)
	return nil
}

// Recent implements ChatHistory.
func (m *MemoryHistory) Recent() ([]ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatMessage, m.size)
	for i := 0; i < m.size; i++ {
		out[i] = m.buf[(m.start+i)%len(m.buf)]
	}
	return out, nil
}
