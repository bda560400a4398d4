// Package transcript maintains the ordered message log for the active
// conversation and derives the reply state of quick-reply option sets.
package transcript

import (
	"strconv"
	"sync"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
)

// Transcript holds the message sequence for exactly one conversation.
// Switching conversations goes through Load, which fully clears the prior
// log first; there is never a mix of two conversations' messages.
type Transcript struct {
	mu sync.RWMutex

	conversationID string
	status         domain.ConversationStatus
	msgs           []domain.Message
	seen           map[string]struct{}

	log *logging.Logger
}

// New creates an empty transcript.
func New(log *logging.Logger) *Transcript {
	return &Transcript{
		status: domain.StatusOpen,
		seen:   make(map[string]struct{}),
		log:    log.Sub("transcript"),
	}
}

// Load replaces the transcript with a bulk-fetched conversation history.
// Replied flags are recomputed in a single backward pass: walking from the
// end, an option set counts as replied once any visitor message has been
// seen after it.
func (t *Transcript) Load(conversationID string, status domain.ConversationStatus, msgs []domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.conversationID = conversationID
	t.status = status
	t.msgs = make([]domain.Message, len(msgs))
	copy(t.msgs, msgs)
	t.seen = make(map[string]struct{}, len(msgs))

	visitorAfter := false
	for i := len(t.msgs) - 1; i >= 0; i-- {
		if t.msgs[i].HasOptions() {
			t.msgs[i].Replied = visitorAfter
		}
		if t.msgs[i].Sender.Kind == domain.SenderVisitor {
			visitorAfter = true
		}
	}

	for _, m := range t.msgs {
		t.seen[dedupeKey(m)] = struct{}{}
	}

	t.log.Debug().
		Str("conversationId", conversationID).
		Int("messages", len(t.msgs)).
		Str("status", string(status)).
		Msg("transcript loaded")
}

// Attach binds the transcript to a newly created conversation without
// discarding messages that already arrived for it.
func (t *Transcript) Attach(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conversationID = conversationID
	t.status = domain.StatusOpen
}

// Clear empties the transcript and detaches it from any conversation.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conversationID = ""
	t.status = domain.StatusOpen
	t.msgs = nil
	t.seen = make(map[string]struct{})
}

// Append adds a message to the end of the log. Duplicate deliveries —
// same timestamp, sender, and text — are dropped and reported as false.
// A visitor message resolves every outstanding option set.
func (t *Transcript) Append(msg domain.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := dedupeKey(msg)
	if _, dup := t.seen[key]; dup {
		t.log.Debug().Str("text", msg.Text).Msg("duplicate message dropped")
		return false
	}
	t.seen[key] = struct{}{}

	if msg.Sender.Kind == domain.SenderVisitor {
		for i := range t.msgs {
			if t.msgs[i].HasOptions() {
				t.msgs[i].Replied = true
			}
		}
	}

	t.msgs = append(t.msgs, msg)
	return true
}

// SetStatus records a conversation status change observed via push event.
func (t *Transcript) SetStatus(status domain.ConversationStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// Status returns the conversation status as last observed.
func (t *Transcript) Status() domain.ConversationStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// ConversationID returns the id of the loaded conversation, empty when the
// transcript is detached.
func (t *Transcript) ConversationID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.conversationID
}

// Messages returns a copy of the message sequence.
func (t *Transcript) Messages() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.msgs)
}

// InputVisible derives the input visibility invariant: the input is hidden
// exactly when the conversation is closed or the trailing message carries
// an unresolved option set.
func (t *Transcript) InputVisible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.status == domain.StatusClosed {
		return false
	}
	if n := len(t.msgs); n > 0 {
		last := t.msgs[n-1]
		if last.HasOptions() && !last.Replied {
			return false
		}
	}
	return true
}

func dedupeKey(m domain.Message) string {
	return strconv.FormatInt(m.Timestamp.UnixNano(), 10) + "|" + m.Sender.Wire() + "|" + m.Text
}
