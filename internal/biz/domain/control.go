package domain

import "time"

// ChatControl represents the per-chat activation record
type ChatControl struct {
	ChatID    string
	Active    bool
	UpdatedAt time.Time
}

// NewChatControl creates a control record for a chat, inactive by default
func NewChatControl(chatID string, active bool) *ChatControl {
	return &ChatControl{
		ChatID:    chatID,
		Active:    active,
		UpdatedAt: time.Now(),
	}
}

// SetActive toggles activation. Idempotent.
func (c *ChatControl) SetActive(active bool) {
	c.Active = active
	c.UpdatedAt = time.Now()
}
