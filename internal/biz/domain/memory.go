package domain

import "time"

// History entry roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryEntry represents one turn in a sender's conversation history
type HistoryEntry struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// SenderMemory represents the per-sender conversational memory.
// Created lazily on first message, mutated on every processed message,
// never deleted.
type SenderMemory struct {
	SenderID        string
	Jealousy        int
	LastTriggerAt   time.Time
	LastTriggerText string
	History         []HistoryEntry
	UpdatedAt       time.Time
}

// NewSenderMemory creates an empty memory record for a sender
func NewSenderMemory(senderID string) *SenderMemory {
	return &SenderMemory{
		SenderID:  senderID,
		UpdatedAt: time.Now(),
	}
}

// AppendHistory appends a turn, evicting the oldest entries once capacity
// is exceeded (FIFO)
func (m *SenderMemory) AppendHistory(role, text string, at time.Time, capacity int) {
	m.History = append(m.History, HistoryEntry{Role: role, Text: text, At: at})
	if capacity > 0 && len(m.History) > capacity {
		m.History = m.History[len(m.History)-capacity:]
	}
	m.UpdatedAt = at
}

// RecentHistory returns up to n most recent entries, oldest first
func (m *SenderMemory) RecentHistory(n int) []HistoryEntry {
	if n <= 0 || len(m.History) <= n {
		return m.History
	}
	return m.History[len(m.History)-n:]
}
