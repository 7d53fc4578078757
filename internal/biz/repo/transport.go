package repo

import "context"

// Presence states understood by the transport
const (
	PresenceComposing = "composing"
	PresencePaused    = "paused"
)

// SendOptions carries optional delivery parameters
type SendOptions struct {
	QuotedID string // message ID to quote, if any
}

// TransportRepo is the outbound side of the messaging transport.
// Delivery is fire-and-forget: a nil error means the transport accepted
// the message, not that it was delivered.
type TransportRepo interface {
	// SendText sends a text message to a chat
	SendText(ctx context.Context, chatID, text string, opts *SendOptions) error

	// SendPresence updates the bot's presence in a chat (e.g. composing)
	SendPresence(ctx context.Context, chatID, state string) error
}
