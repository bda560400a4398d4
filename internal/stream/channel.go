package stream

import (
	"context"
	"encoding/json"
)

// Event is one named realtime event with its raw payload.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Channel is the bidirectional realtime transport the stream consumes. The
// widget does not implement delivery semantics itself: events are handed to
// the registered handler in the order the transport delivers them, and
// delivery is assumed at-least-once.
type Channel interface {
	// Connect opens the channel. The handler must be registered before
	// Connect so no event is lost.
	Connect(ctx context.Context) error

	// Emit sends a named event with a JSON payload.
	Emit(event string, payload any) error

	// Handle registers the inbound event handler.
	Handle(fn func(Event))

	Close() error
}

// Inbound event names.
const (
	EvNewChatData    = "new_chat_data"
	EvReply          = "reply"
	EvBotTypingStart = "bot_typing_start"
	EvBotTypingStop  = "bot_typing_stop"
	EvChatUpdate     = "chat_update"
)

// Outbound event names.
const (
	EvJoinChat      = "join_chat"
	EvCreateNewChat = "create_new_chat"
	EvMessage       = "message"
)
