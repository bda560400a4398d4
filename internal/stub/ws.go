package stub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/stream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dev backend; any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn is one realtime connection with serialized writes.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
	log  *logging.Logger
}

func (c *wsConn) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(stream.Event{Name: event, Data: data})
}

// handleWS upgrades the connection and runs the canned conversation
// behavior: created chats are greeted with a quick-reply prompt, and every
// visitor message gets a typing indicator followed by an acknowledgement.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	if s.metrics != nil {
		s.metrics.wsConns.Inc()
		defer s.metrics.wsConns.Dec()
	}

	c := &wsConn{conn: conn, log: s.log}
	defer conn.Close()

	tenant := r.URL.Query().Get("chatbotCode")
	s.log.Info().Str("tenant", tenant).Msg("realtime client connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev stream.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			s.log.Warn().Err(err).Msg("malformed frame dropped")
			continue
		}
		s.dispatchWS(c, ev)
	}
}

func (s *Server) dispatchWS(c *wsConn, ev stream.Event) {
	switch ev.Name {
	case stream.EvJoinChat:
		// Room membership is implicit: the stub serves one client.
	case stream.EvCreateNewChat:
		var p struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			s.log.Warn().Err(err).Msg("malformed create_new_chat")
			return
		}
		conv := s.createConversation(p.Email)
		_ = c.send(stream.EvNewChatData, map[string]any{"chat": map[string]string{"_id": conv.ID}})
		s.greet(c, conv.ID)
	case stream.EvMessage:
		var p struct {
			ChatID  string `json:"chatId"`
			Message string `json:"message"`
			FileURL string `json:"fileUrl"`
		}
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			s.log.Warn().Err(err).Msg("malformed message")
			return
		}
		s.appendMessage(p.ChatID, wireMessage{
			Sender:    "user",
			Text:      p.Message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			FileURL:   p.FileURL,
		})
		s.acknowledge(c, p.ChatID)
	default:
		s.log.Debug().Str("event", ev.Name).Msg("unhandled frame")
	}
}

// greet sends the canned opening exchange for a fresh conversation.
func (s *Server) greet(c *wsConn, chatID string) {
	greeting := wireMessage{
		Sender:    "bot",
		Text:      "Hi there! What can we help you with today?",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Options:   []string{"Billing", "Technical issue", "Something else"},
	}
	s.appendMessage(chatID, greeting)

	_ = c.send(stream.EvBotTypingStart, nil)
	_ = c.send(stream.EvReply, greeting)
	_ = c.send(stream.EvBotTypingStop, nil)
}

// acknowledge answers a visitor message.
func (s *Server) acknowledge(c *wsConn, chatID string) {
	reply := wireMessage{
		Sender:    "bot",
		Text:      "Thanks! A teammate will follow up shortly.",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	s.appendMessage(chatID, reply)

	_ = c.send(stream.EvBotTypingStart, nil)
	_ = c.send(stream.EvReply, reply)
	_ = c.send(stream.EvBotTypingStop, nil)
}
