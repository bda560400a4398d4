// Package stream consumes the realtime event channel and translates its
// events into transcript and session mutations. Inbound events are hopped
// onto the run loop so handlers never race with user actions; the order the
// transport delivered them in is preserved.
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/runloop"
	"github.com/solvyn/widgetcore/internal/session"
	"github.com/solvyn/widgetcore/internal/transcript"
)

// Notifier receives the render-relevant effects of inbound events.
type Notifier interface {
	MessageArrived(m domain.Message)
	TypingChanged(on bool)
	InputVisibilityChanged(visible bool)
	ConversationJoined(id string)
}

// Stream binds a Channel to the session, transcript, and notifier.
type Stream struct {
	ch    Channel
	sched runloop.Scheduler
	sess  *session.Context
	ts    *transcript.Transcript
	notif Notifier

	tenantCode string
	pageURL    string
	log        *logging.Logger
}

// New creates a stream. Connect must be called before events flow.
func New(ch Channel, sched runloop.Scheduler, sess *session.Context, ts *transcript.Transcript, notif Notifier, tenantCode, pageURL string, log *logging.Logger) *Stream {
	return &Stream{
		ch:         ch,
		sched:      sched,
		sess:       sess,
		ts:         ts,
		notif:      notif,
		tenantCode: tenantCode,
		pageURL:    pageURL,
		log:        log.Sub("stream"),
	}
}

// Connect registers the inbound handler and opens the channel.
func (s *Stream) Connect(ctx context.Context) error {
	s.ch.Handle(func(ev Event) {
		s.sched.Post(func() { s.dispatch(ev) })
	})
	return s.ch.Connect(ctx)
}

// Close tears down the underlying channel.
func (s *Stream) Close() error {
	return s.ch.Close()
}

func (s *Stream) dispatch(ev Event) {
	switch ev.Name {
	case EvNewChatData:
		s.onNewChatData(ev.Data)
	case EvReply:
		s.onReply(ev.Data)
	case EvBotTypingStart:
		s.onTyping(true)
	case EvBotTypingStop:
		s.onTyping(false)
	case EvChatUpdate:
		s.onChatUpdate(ev.Data)
	default:
		s.log.Debug().Str("event", ev.Name).Msg("unhandled event")
	}
}

func (s *Stream) onNewChatData(data json.RawMessage) {
	var p newChatDataPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Chat.ID == "" {
		s.log.Warn().Err(err).Msg("malformed new_chat_data")
		return
	}

	s.sess.SetConversation(p.Chat.ID)
	s.ts.Attach(p.Chat.ID)
	if err := s.JoinChat(p.Chat.ID); err != nil {
		s.log.Error().Err(err).Str("chatId", p.Chat.ID).Msg("join after create failed")
	}
	s.notif.ConversationJoined(p.Chat.ID)
	s.syncInput()
}

func (s *Stream) onReply(data json.RawMessage) {
	var p replyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Warn().Err(err).Msg("malformed reply")
		return
	}
	if p.ChatID != "" && p.ChatID != s.sess.ConversationID() {
		s.log.Debug().Str("chatId", p.ChatID).Msg("reply for inactive conversation ignored")
		return
	}

	s.onTyping(false)

	msg := domain.Message{
		Sender:        domain.ParseSender(p.Sender),
		Text:          p.Text,
		Timestamp:     parseTimestamp(p.Timestamp),
		Options:       p.Options,
		AttachmentURL: p.FileURL,
	}
	if s.ts.Append(msg) {
		s.notif.MessageArrived(msg)
	}
	s.syncInput()
}

func (s *Stream) onTyping(on bool) {
	if s.sess.Typing() == on {
		return
	}
	s.sess.SetTyping(on)
	s.notif.TypingChanged(on)
}

func (s *Stream) onChatUpdate(data json.RawMessage) {
	var p chatUpdatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Warn().Err(err).Msg("malformed chat_update")
		return
	}

	// Updates address a specific conversation; anything but the active one
	// is someone else's business.
	if p.ChatID == "" || p.ChatID != s.sess.ConversationID() {
		s.log.Debug().Str("chatId", p.ChatID).Msg("chat_update for inactive conversation ignored")
		return
	}

	carried := false
	if p.Message != "" {
		msg := domain.Message{
			Sender:        domain.ParseSender(p.Sender),
			Text:          p.Message,
			Timestamp:     time.Now(),
			Options:       p.Options,
			AttachmentURL: p.FileURL,
		}
		if s.ts.Append(msg) {
			carried = true
			s.notif.MessageArrived(msg)
		}
	}

	switch domain.ConversationStatus(p.Status) {
	case domain.StatusClosed:
		s.ts.SetStatus(domain.StatusClosed)
		if !carried {
			notice := domain.Message{
				Sender:    domain.Sender{Kind: domain.SenderBot},
				Text:      "This conversation has been closed.",
				Timestamp: time.Now(),
			}
			if s.ts.Append(notice) {
				s.notif.MessageArrived(notice)
			}
		}
	case domain.StatusOpen:
		s.ts.SetStatus(domain.StatusOpen)
	}
	s.syncInput()
}

// syncInput re-derives input visibility from the transcript and publishes a
// change when it flips.
func (s *Stream) syncInput() {
	v := s.ts.InputVisible()
	if v == s.sess.InputVisible() {
		return
	}
	s.sess.SetInputVisible(v)
	s.notif.InputVisibilityChanged(v)
}

// JoinChat subscribes the connection to a conversation's event room.
func (s *Stream) JoinChat(conversationID string) error {
	return s.ch.Emit(EvJoinChat, joinChatPayload{ChatID: conversationID})
}

// CreateNewChat asks the backend to open a conversation for the visitor.
// The conversation id comes back asynchronously via new_chat_data.
func (s *Stream) CreateNewChat(country domain.CountryInfo) error {
	return s.ch.Emit(EvCreateNewChat, createNewChatPayload{
		TenantCode: s.tenantCode,
		Email:      s.sess.Email(),
		Country:    country,
	})
}

// SendMessage emits one visitor message for the active conversation.
func (s *Stream) SendMessage(text, fileURL string) error {
	return s.ch.Emit(EvMessage, messagePayload{
		TenantCode: s.tenantCode,
		ChatID:     s.sess.ConversationID(),
		Email:      s.sess.Email(),
		Message:    text,
		PageURL:    s.pageURL,
		FileURL:    fileURL,
	})
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now()
	}
	return t
}
