package gateway

import (
	"encoding/json"
	"time"

	"github.com/softclay/ana-bridge/internal/biz/domain"
)

// Frame types exchanged with the gateway sidecar
const (
	FrameConnectionUpdate = "connection.update"
	FrameMessagesUpsert   = "messages.upsert"
	FrameCredsUpdate      = "creds.update"
	FrameSend             = "send"
	FramePresence         = "presence"
)

// Close status codes carried by connection.update close events.
// CodeLoggedOut is terminal; anything else non-zero is transient.
const (
	CodeLoggedOut      = 401
	CodeConnectionLost = 408
)

// Frame is one JSON frame on the gateway socket
type Frame struct {
	Type       string            `json:"type"`
	Connection *ConnectionUpdate `json:"connection,omitempty"`
	Messages   []MessageFrame    `json:"messages,omitempty"`
	Creds      json.RawMessage   `json:"creds,omitempty"`

	// Outbound fields
	ClientID string `json:"clientId,omitempty"`
	ChatID   string `json:"chatId,omitempty"`
	Text     string `json:"text,omitempty"`
	QuotedID string `json:"quotedId,omitempty"`
	State    string `json:"state,omitempty"`
}

// ConnectionUpdate is the transport lifecycle event payload
type ConnectionUpdate struct {
	Connection string `json:"connection,omitempty"` // "open" | "close" | ""
	QR         string `json:"qr,omitempty"`         // pairing artifact, refreshed per event
	StatusCode int    `json:"statusCode,omitempty"` // close classification; 0 means benign
	Me         string `json:"me,omitempty"`         // bot's own ID, set on open
}

// MessageFrame is one inbound message as the gateway delivers it.
// Text can arrive under several message kinds; ExtractText picks the
// first non-empty one.
type MessageFrame struct {
	ID           string   `json:"id"`
	ChatID       string   `json:"chatId"`
	SenderID     string   `json:"senderId"` // participant in groups, chat ID otherwise
	FromMe       bool     `json:"fromMe"`
	IsGroup      bool     `json:"isGroup"`
	Conversation string   `json:"conversation,omitempty"`
	ExtendedText string   `json:"extendedText,omitempty"`
	ImageCaption string   `json:"imageCaption,omitempty"`
	VideoCaption string   `json:"videoCaption,omitempty"`
	MentionedIDs []string `json:"mentionedIds,omitempty"`
	HasQuote     bool     `json:"hasQuote,omitempty"`
	Timestamp    int64    `json:"timestamp,omitempty"` // unix seconds
}

// ExtractText returns the message text across the supported kinds,
// or "" when the message carries none (reactions, protocol events)
func (f *MessageFrame) ExtractText() string {
	for _, t := range []string{f.Conversation, f.ExtendedText, f.ImageCaption, f.VideoCaption} {
		if t != "" {
			return t
		}
	}
	return ""
}

// ToDomain converts the frame into the domain message entity
func (f *MessageFrame) ToDomain() *domain.InboundMessage {
	var ts time.Time
	if f.Timestamp > 0 {
		ts = time.Unix(f.Timestamp, 0)
	}
	senderID := f.SenderID
	if senderID == "" {
		senderID = f.ChatID
	}
	return &domain.InboundMessage{
		ID:        f.ID,
		ChatID:    f.ChatID,
		SenderID:  senderID,
		Text:      f.ExtractText(),
		FromMe:    f.FromMe,
		IsGroup:   f.IsGroup,
		Mentions:  f.MentionedIDs,
		HasQuote:  f.HasQuote,
		Timestamp: ts,
	}
}
