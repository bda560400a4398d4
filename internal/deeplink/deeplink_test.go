package deeplink

import (
	"testing"
	"time"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/runloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTriple(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    domain.DeepLinkTarget
	}{
		{
			name:    "article",
			encoded: "help" + Separator + "articleContent" + Separator + "a1",
			want:    domain.DeepLinkTarget{Tab: domain.TabHelp, View: domain.ViewArticleContent, ElementID: "a1"},
		},
		{
			name:    "open conversation",
			encoded: "messages" + Separator + "chat" + Separator + "abc123",
			want:    domain.DeepLinkTarget{Tab: domain.TabMessages, View: domain.ViewChat, ElementID: "abc123"},
		},
		{
			name:    "null sentinel starts new",
			encoded: "messages" + Separator + "chat" + Separator + "null",
			want:    domain.DeepLinkTarget{Tab: domain.TabMessages, View: domain.ViewChat},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseURLForm(t *testing.T) {
	got, err := Parse("https://example.com/docs" + Separator + "new")
	require.NoError(t, err)
	assert.Equal(t, domain.DeepLinkTarget{URL: "https://example.com/docs", NewWindow: true}, got)
	assert.True(t, got.External())

	// Unrecognized target navigates the current context.
	got, err = Parse("https://example.com" + Separator + "whatever")
	require.NoError(t, err)
	assert.False(t, got.NewWindow)
}

func TestParseMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"just-a-string",
		"tab" + Separator + "view",
		"a" + Separator + "b" + Separator + "c" + Separator + "d",
		"https://example.com",
	} {
		_, err := Parse(encoded)
		assert.ErrorIs(t, err, ErrMalformed, "encoded=%q", encoded)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	enc := Encode(domain.TabMessages, domain.ViewChat, "")
	got, err := Parse(enc)
	require.NoError(t, err)
	assert.True(t, got.StartsNew())

	enc = EncodeURL("https://example.com", true)
	got, err = Parse(enc)
	require.NoError(t, err)
	assert.True(t, got.NewWindow)
}

// mockNavigator records the calls the resolver makes.
type mockNavigator struct {
	expanded bool
	calls    []string
	known    map[string]bool
}

func (m *mockNavigator) Expanded() bool      { return m.expanded }
func (m *mockNavigator) ToggleWidget()       { m.expanded = true; m.calls = append(m.calls, "toggle") }
func (m *mockNavigator) SwitchTab(tab domain.Tab) {
	m.calls = append(m.calls, "tab:"+string(tab))
}
func (m *mockNavigator) OpenArticle(id string) bool {
	m.calls = append(m.calls, "article:"+id)
	return m.known[id]
}
func (m *mockNavigator) ShowArticles()            { m.calls = append(m.calls, "articles") }
func (m *mockNavigator) StartNewChat()            { m.calls = append(m.calls, "newChat") }
func (m *mockNavigator) OpenConversation(id string) {
	m.calls = append(m.calls, "open:"+id)
}
func (m *mockNavigator) ShowMessagesDefault() { m.calls = append(m.calls, "messagesDefault") }
func (m *mockNavigator) OpenURL(url string, newWindow bool) {
	m.calls = append(m.calls, "url:"+url)
}

func newTestResolver(expanded bool) (*Resolver, *mockNavigator, *runloop.Manual) {
	nav := &mockNavigator{expanded: expanded, known: map[string]bool{"a1": true}}
	sched := runloop.NewManual()
	return NewResolver(sched, nav, logging.New(nil, "silent")), nav, sched
}

func TestResolveNullStartsNewChat(t *testing.T) {
	r, nav, sched := newTestResolver(true)

	r.Resolve(Encode(domain.TabMessages, domain.ViewChat, ""))
	sched.Advance(viewSettle)

	assert.Equal(t, []string{"tab:messages", "newChat"}, nav.calls)
}

func TestResolveIDOpensConversation(t *testing.T) {
	r, nav, sched := newTestResolver(true)

	r.Resolve(Encode(domain.TabMessages, domain.ViewChat, "abc123"))
	sched.Advance(viewSettle)

	assert.Equal(t, []string{"tab:messages", "open:abc123"}, nav.calls)
}

func TestResolveExpandsCollapsedWidget(t *testing.T) {
	r, nav, sched := newTestResolver(false)

	r.Resolve(Encode(domain.TabHelp, domain.ViewArticles, ""))
	sched.Advance(viewSettle)

	assert.Equal(t, []string{"toggle", "tab:help", "articles"}, nav.calls)
}

func TestResolveViewWaitsForSettle(t *testing.T) {
	r, nav, sched := newTestResolver(true)

	r.Resolve(Encode(domain.TabHelp, domain.ViewArticleContent, "a1"))
	assert.Equal(t, []string{"tab:help"}, nav.calls)

	sched.Advance(viewSettle - time.Millisecond)
	assert.Equal(t, []string{"tab:help"}, nav.calls)

	sched.Advance(time.Millisecond)
	assert.Equal(t, []string{"tab:help", "article:a1"}, nav.calls)
}

func TestResolveUnknownArticleFallsBackToList(t *testing.T) {
	r, nav, sched := newTestResolver(true)

	r.Resolve(Encode(domain.TabHelp, domain.ViewArticleContent, "missing"))
	sched.Advance(viewSettle)

	assert.Equal(t, []string{"tab:help", "article:missing", "articles"}, nav.calls)
}

func TestResolveExternalURL(t *testing.T) {
	r, nav, sched := newTestResolver(false)

	r.Resolve(EncodeURL("https://example.com", true))
	sched.Advance(viewSettle)

	// External links never expand the widget or switch tabs.
	assert.Equal(t, []string{"url:https://example.com"}, nav.calls)
}

func TestResolveMalformedChangesNothing(t *testing.T) {
	r, nav, sched := newTestResolver(false)

	r.Resolve("garbage")
	sched.Advance(time.Second)

	assert.Empty(t, nav.calls)
	assert.False(t, nav.expanded)
}
