package stream

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/runloop"
	"github.com/solvyn/widgetcore/internal/session"
	"github.com/solvyn/widgetcore/internal/store"
	"github.com/solvyn/widgetcore/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChannel records emits and lets tests inject inbound events.
type mockChannel struct {
	handler   func(Event)
	emitted   []Event
	connected bool
	closed    bool
}

func (m *mockChannel) Connect(ctx context.Context) error { m.connected = true; return nil }
func (m *mockChannel) Handle(fn func(Event))             { m.handler = fn }
func (m *mockChannel) Close() error                      { m.closed = true; return nil }

func (m *mockChannel) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.emitted = append(m.emitted, Event{Name: event, Data: data})
	return nil
}

func (m *mockChannel) fire(t *testing.T, name string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	m.handler(Event{Name: name, Data: data})
}

// recordingNotifier captures the effects published to the renderer.
type recordingNotifier struct {
	messages []domain.Message
	typing   []bool
	input    []bool
	joined   []string
}

func (n *recordingNotifier) MessageArrived(m domain.Message)      { n.messages = append(n.messages, m) }
func (n *recordingNotifier) TypingChanged(on bool)                { n.typing = append(n.typing, on) }
func (n *recordingNotifier) InputVisibilityChanged(visible bool)  { n.input = append(n.input, visible) }
func (n *recordingNotifier) ConversationJoined(id string)         { n.joined = append(n.joined, id) }

func newTestStream(t *testing.T) (*Stream, *mockChannel, *recordingNotifier, *session.Context, *transcript.Transcript) {
	t.Helper()
	log := logging.New(nil, "silent")
	sess, err := session.New(store.NewMemory(), log)
	require.NoError(t, err)
	ts := transcript.New(log)
	ch := &mockChannel{}
	notif := &recordingNotifier{}
	s := New(ch, runloop.NewManual(), sess, ts, notif, "tenant-1", "https://shop.example", log)
	require.NoError(t, s.Connect(context.Background()))
	return s, ch, notif, sess, ts
}

func TestReplySequenceYieldsSingleEntry(t *testing.T) {
	_, ch, notif, sess, ts := newTestStream(t)
	sess.SetConversation("c1")
	ts.Attach("c1")

	ch.fire(t, EvBotTypingStart, nil)
	assert.True(t, sess.Typing())

	ch.fire(t, EvReply, replyPayload{
		Sender:    "bot",
		Text:      "Hi",
		Timestamp: "2026-08-29T10:00:00Z",
	})
	ch.fire(t, EvBotTypingStop, nil)

	assert.False(t, sess.Typing())
	require.Len(t, notif.messages, 1)
	assert.Equal(t, "Hi", notif.messages[0].Text)
	assert.Equal(t, 1, ts.Len())
	// Exactly one on and one off, no redundant off from the stop event.
	assert.Equal(t, []bool{true, false}, notif.typing)
}

func TestDuplicateReplyDropped(t *testing.T) {
	_, ch, notif, _, ts := newTestStream(t)
	ts.Attach("c1")

	p := replyPayload{Sender: "bot", Text: "Hi", Timestamp: "2026-08-29T10:00:00Z"}
	ch.fire(t, EvReply, p)
	ch.fire(t, EvReply, p)

	assert.Equal(t, 1, ts.Len())
	assert.Len(t, notif.messages, 1)
}

func TestReplyWithOptionsHidesInput(t *testing.T) {
	_, ch, notif, sess, _ := newTestStream(t)

	ch.fire(t, EvReply, replyPayload{
		Sender:    "bot",
		Text:      "Pick one",
		Timestamp: "2026-08-29T10:00:00Z",
		Options:   []string{"Billing", "Shipping"},
	})

	assert.False(t, sess.InputVisible())
	assert.Equal(t, []bool{false}, notif.input)
}

func TestNewChatDataJoinsAndPersists(t *testing.T) {
	_, ch, notif, sess, ts := newTestStream(t)

	var p newChatDataPayload
	p.Chat.ID = "c42"
	ch.fire(t, EvNewChatData, p)

	assert.Equal(t, "c42", sess.ConversationID())
	assert.Equal(t, "c42", ts.ConversationID())
	assert.Equal(t, []string{"c42"}, notif.joined)

	require.Len(t, ch.emitted, 1)
	assert.Equal(t, EvJoinChat, ch.emitted[0].Name)
	var join joinChatPayload
	require.NoError(t, json.Unmarshal(ch.emitted[0].Data, &join))
	assert.Equal(t, "c42", join.ChatID)
}

func TestChatUpdateClosedWithoutMessageAddsNotice(t *testing.T) {
	_, ch, notif, sess, ts := newTestStream(t)
	sess.SetConversation("c1")
	ts.Attach("c1")

	ch.fire(t, EvChatUpdate, chatUpdatePayload{ChatID: "c1", Status: "closed"})

	assert.Equal(t, domain.StatusClosed, ts.Status())
	assert.False(t, sess.InputVisible())
	require.Len(t, notif.messages, 1)
	assert.Equal(t, "This conversation has been closed.", notif.messages[0].Text)
	assert.Equal(t, domain.SenderBot, notif.messages[0].Sender.Kind)
}

func TestChatUpdateClosedWithMessageSkipsNotice(t *testing.T) {
	_, ch, notif, sess, ts := newTestStream(t)
	sess.SetConversation("c1")
	ts.Attach("c1")

	ch.fire(t, EvChatUpdate, chatUpdatePayload{
		ChatID:  "c1",
		Sender:  "staff-Dana",
		Message: "Resolved, closing this out.",
		Status:  "closed",
	})

	require.Len(t, notif.messages, 1)
	assert.Equal(t, "Resolved, closing this out.", notif.messages[0].Text)
	assert.Equal(t, domain.StatusClosed, ts.Status())
	assert.False(t, sess.InputVisible())
}

func TestReplyForInactiveConversationIgnored(t *testing.T) {
	_, ch, notif, sess, ts := newTestStream(t)
	sess.SetConversation("c1")
	ts.Attach("c1")

	ch.fire(t, EvReply, replyPayload{ChatID: "other", Sender: "bot", Text: "Hi"})

	assert.Zero(t, ts.Len())
	assert.Empty(t, notif.messages)
}

func TestChatUpdateInactiveConversationIgnored(t *testing.T) {
	_, ch, notif, sess, ts := newTestStream(t)
	sess.SetConversation("c1")
	ts.Attach("c1")

	ch.fire(t, EvChatUpdate, chatUpdatePayload{ChatID: "other", Status: "closed"})

	assert.Equal(t, domain.StatusOpen, ts.Status())
	assert.True(t, sess.InputVisible())
	assert.Empty(t, notif.messages)
}

func TestChatUpdateReopenRestoresInput(t *testing.T) {
	_, ch, _, sess, ts := newTestStream(t)
	sess.SetConversation("c1")
	ts.Attach("c1")

	ch.fire(t, EvChatUpdate, chatUpdatePayload{ChatID: "c1", Status: "closed"})
	assert.False(t, sess.InputVisible())

	ch.fire(t, EvChatUpdate, chatUpdatePayload{ChatID: "c1", Status: "open"})
	assert.True(t, sess.InputVisible())
}

func TestSendMessagePayload(t *testing.T) {
	s, ch, _, sess, _ := newTestStream(t)
	sess.SetEmail("a@b.com")
	sess.SetConversation("c1")

	require.NoError(t, s.SendMessage("hello", "https://cdn.example/file.png"))

	require.Len(t, ch.emitted, 1)
	assert.Equal(t, EvMessage, ch.emitted[0].Name)
	var p messagePayload
	require.NoError(t, json.Unmarshal(ch.emitted[0].Data, &p))
	assert.Equal(t, messagePayload{
		TenantCode: "tenant-1",
		ChatID:     "c1",
		Email:      "a@b.com",
		Message:    "hello",
		PageURL:    "https://shop.example",
		FileURL:    "https://cdn.example/file.png",
	}, p)
}

func TestCreateNewChatPayload(t *testing.T) {
	s, ch, _, sess, _ := newTestStream(t)
	sess.SetEmail("a@b.com")

	country := domain.CountryInfo{Country: "Portugal", CountryCode: "PT", Flag: "🇵🇹"}
	require.NoError(t, s.CreateNewChat(country))

	require.Len(t, ch.emitted, 1)
	assert.Equal(t, EvCreateNewChat, ch.emitted[0].Name)
	var p createNewChatPayload
	require.NoError(t, json.Unmarshal(ch.emitted[0].Data, &p))
	assert.Equal(t, "tenant-1", p.TenantCode)
	assert.Equal(t, "a@b.com", p.Email)
	assert.Equal(t, country, p.Country)
}

func TestMalformedEventLeavesStateUntouched(t *testing.T) {
	_, ch, notif, sess, ts := newTestStream(t)
	sess.SetConversation("c1")
	ts.Attach("c1")

	ch.handler(Event{Name: EvReply, Data: json.RawMessage(`{not json`)})
	ch.handler(Event{Name: EvChatUpdate, Data: json.RawMessage(`"nope"`)})

	assert.Zero(t, ts.Len())
	assert.Empty(t, notif.messages)
	assert.True(t, sess.InputVisible())
}

func TestParseTimestampFallsBackToNow(t *testing.T) {
	before := time.Now()
	got := parseTimestamp("garbage")
	assert.False(t, got.Before(before))

	exact, err := time.Parse(time.RFC3339, "2026-08-29T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, exact, parseTimestamp("2026-08-29T10:00:00Z"))
}
