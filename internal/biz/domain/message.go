package domain

import (
	"strings"
	"time"
)

// InboundMessage represents one message delivered by the transport
type InboundMessage struct {
	ID        string
	ChatID    string
	SenderID  string
	Text      string // extracted text; empty when the message carries none
	FromMe    bool
	IsGroup   bool
	Mentions  []string // mentioned participant IDs
	HasQuote  bool     // message quotes a prior message
	Timestamp time.Time
}

// LowerText returns the lowercased text for lexicon matching
func (m *InboundMessage) LowerText() string {
	return strings.ToLower(m.Text)
}

// HasText reports whether any text could be extracted
func (m *InboundMessage) HasText() bool {
	return strings.TrimSpace(m.Text) != ""
}

// MentionsID reports whether the given participant ID is mentioned
func (m *InboundMessage) MentionsID(id string) bool {
	if id == "" {
		return false
	}
	for _, j := range m.Mentions {
		if j == id {
			return true
		}
	}
	return false
}
