package domain

import (
	"strings"
	"time"
)

// SenderKind classifies who authored a transcript message.
type SenderKind string

const (
	SenderVisitor     SenderKind = "visitor"
	SenderBot         SenderKind = "bot"
	SenderAIAssistant SenderKind = "ai"
	SenderStaff       SenderKind = "staff"
	SenderOwner       SenderKind = "owner"
)

// Sender is a tagged variant identifying a message author. Staff senders
// carry the staff member's display name.
type Sender struct {
	Kind SenderKind
	Name string
}

// ParseSender decodes the wire form used by the backend: "user", "bot",
// "ai", "owner", or "staff-<name>". Unknown values are treated as bot so a
// malformed event still renders as an inbound message.
func ParseSender(s string) Sender {
	switch {
	case s == "user":
		return Sender{Kind: SenderVisitor}
	case s == "bot":
		return Sender{Kind: SenderBot}
	case s == "ai":
		return Sender{Kind: SenderAIAssistant}
	case s == "owner":
		return Sender{Kind: SenderOwner}
	case strings.HasPrefix(s, "staff-"):
		return Sender{Kind: SenderStaff, Name: strings.TrimPrefix(s, "staff-")}
	default:
		return Sender{Kind: SenderBot}
	}
}

// Wire returns the backend wire form of the sender.
func (s Sender) Wire() string {
	switch s.Kind {
	case SenderVisitor:
		return "user"
	case SenderAIAssistant:
		return "ai"
	case SenderStaff:
		return "staff-" + s.Name
	case SenderOwner:
		return "owner"
	default:
		return "bot"
	}
}

// Label returns the display label for the sender, translated via the
// phrase table.
func (s Sender) Label(p PhraseTable) string {
	switch s.Kind {
	case SenderVisitor:
		return p.Get("You")
	case SenderAIAssistant:
		return p.Get("AI Assistant")
	case SenderStaff:
		return s.Name
	case SenderOwner:
		return p.Get("Owner")
	default:
		return p.Get("Bot")
	}
}

// Inbound reports whether the message flows toward the visitor, which
// controls bubble alignment.
func (s Sender) Inbound() bool {
	return s.Kind != SenderVisitor
}

// Message is one transcript entry. Messages are never mutated after
// creation; only the derived Replied flag changes meaning for rendering.
type Message struct {
	Sender        Sender
	Text          string
	Timestamp     time.Time
	Options       []string
	Replied       bool
	AttachmentURL string
}

// HasOptions reports whether the message carries a quick-reply option set.
func (m Message) HasOptions() bool {
	return len(m.Options) > 0
}
