package stub

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/solvyn/widgetcore/internal/api"
	"github.com/solvyn/widgetcore/internal/config"
	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStub(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(config.StubConfig{}, logging.New(nil, "silent"))
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return s, srv
}

func TestArticlesEndpoints(t *testing.T) {
	_, srv := newTestStub(t)
	c := api.New(srv.URL, "tenant-1", srv.Client(), logging.New(nil, "silent"))

	articles, err := c.Articles(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 3)

	body, err := c.ArticleBody(context.Background(), "refunds")
	require.NoError(t, err)
	assert.Contains(t, body, "30 days")

	_, err = c.ArticleBody(context.Background(), "missing")
	assert.Error(t, err)
}

func TestConversationLifecycleOverREST(t *testing.T) {
	s, srv := newTestStub(t)
	c := api.New(srv.URL, "tenant-1", srv.Client(), logging.New(nil, "silent"))

	conv := s.createConversation("a@b.com")
	s.appendMessage(conv.ID, wireMessage{
		Sender:    "bot",
		Text:      "Hi",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	got, err := c.Conversation(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, domain.StatusOpen, got.Status)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, domain.SenderBot, got.Messages[0].Sender.Kind)

	list, err := c.Conversations(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, conv.ID, list[0].ID)
}

func TestUpload(t *testing.T) {
	_, srv := newTestStub(t)
	c := api.New(srv.URL, "tenant-1", srv.Client(), logging.New(nil, "silent"))

	res, err := c.Upload(context.Background(), "c1", []api.UploadFile{
		{Name: "receipt.png", Reader: strings.NewReader("bytes")},
	})
	require.NoError(t, err)
	require.Len(t, res.URLs, 1)
	assert.Contains(t, res.URLs[0], "c1/receipt.png")
}

func TestWebSocketCreateChatFlow(t *testing.T) {
	_, srv := newTestStub(t)
	log := logging.New(nil, "silent")

	ch, err := stream.NewWSChannel(srv.URL, "tenant-1", "https://shop.example", log)
	require.NoError(t, err)

	events := make(chan stream.Event, 16)
	ch.Handle(func(ev stream.Event) { events <- ev })
	require.NoError(t, ch.Connect(context.Background()))
	defer ch.Close()

	require.NoError(t, ch.Emit(stream.EvCreateNewChat, map[string]string{
		"chatbotCode": "tenant-1",
		"email":       "a@b.com",
	}))

	// new_chat_data, then the greeting wrapped in typing events.
	var names []string
	for len(names) < 4 {
		select {
		case ev := <-events:
			names = append(names, ev.Name)
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out, got %v", names)
		}
	}
	assert.Equal(t, []string{
		stream.EvNewChatData,
		stream.EvBotTypingStart,
		stream.EvReply,
		stream.EvBotTypingStop,
	}, names)
}
