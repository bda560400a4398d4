// Package widget wires the widget's components into one engine: the host
// handshake, the session record, the transcript, the view router, the
// realtime stream, and the REST client. All state mutation happens on the
// run loop; network completions hop onto it before touching anything.
package widget

import (
	"context"
	"errors"
	"net/http"

	"github.com/solvyn/widgetcore/internal/api"
	"github.com/solvyn/widgetcore/internal/deeplink"
	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/geo"
	"github.com/solvyn/widgetcore/internal/hostbridge"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/markdown"
	"github.com/solvyn/widgetcore/internal/runloop"
	"github.com/solvyn/widgetcore/internal/session"
	"github.com/solvyn/widgetcore/internal/store"
	"github.com/solvyn/widgetcore/internal/stream"
	"github.com/solvyn/widgetcore/internal/transcript"
	"github.com/solvyn/widgetcore/internal/view"
)

// Expanded iframe size requested from the host.
const (
	expandedWidth  = "400px"
	expandedHeight = "629px"
)

// ErrEmailRequired rejects an empty email submission.
var ErrEmailRequired = errors.New("widget: email is required")

// Renderer receives every presentation effect the engine produces. It
// extends the view sink with content rendering and host-side navigation.
type Renderer interface {
	view.Sink

	ConfigApplied(cfg domain.Config)
	ExpandedChanged(expanded bool)

	ConversationsListed(convs []domain.Conversation)
	TranscriptLoaded(msgs []domain.Message)
	MessageArrived(m domain.Message)
	TypingChanged(on bool)
	InputVisibilityChanged(visible bool)

	ArticlesListed(articles []domain.Article)
	ArticleShown(article domain.Article, body string)

	Notice(text string)
	NavigateHost(url string, newWindow bool)
}

// Deps are the engine's injected collaborators.
type Deps struct {
	Bridge   *hostbridge.Bridge
	Sched    runloop.Scheduler
	Store    store.Store
	Renderer Renderer

	Markdown markdown.Converter
	Geo      *geo.Lookup

	// PageURL is the URL of the page hosting the widget, attributed to
	// outbound messages and the realtime connection.
	PageURL string

	HTTPClient *http.Client

	// NewChannel builds the realtime channel once configuration is known.
	// Nil defaults to a WebSocket channel against cfg's socket URL.
	NewChannel func(cfg domain.Config) (stream.Channel, error)

	Log *logging.Logger
}

// Engine is the assembled widget.
type Engine struct {
	deps Deps
	log  *logging.Logger

	cfg    domain.Config
	sess   *session.Context
	ts     *transcript.Transcript
	router *view.Router
	stream *stream.Stream
	api    *api.Client
	md     markdown.Converter

	resolver *deeplink.Resolver

	articles         []domain.Article
	currentArticleID string
}

// New creates an engine. Start performs the handshake and brings the rest
// up.
func New(deps Deps) (*Engine, error) {
	log := deps.Log.Sub("engine")

	sess, err := session.New(deps.Store, deps.Log)
	if err != nil {
		return nil, err
	}

	md := deps.Markdown
	if md == nil {
		md = markdown.Passthrough{}
	}
	if deps.Geo == nil {
		deps.Geo = geo.New("", nil, deps.Log)
	}

	e := &Engine{
		deps: deps,
		log:  log,
		sess: sess,
		ts:   transcript.New(deps.Log),
		md:   md,
	}
	e.resolver = deeplink.NewResolver(deps.Sched, e, deps.Log)
	return e, nil
}

// Start performs the configuration handshake and boots every component.
// It returns once the widget is live; events then flow via the run loop.
func (e *Engine) Start(ctx context.Context) error {
	cfg, err := e.deps.Bridge.Handshake(ctx)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.deps.Renderer.ConfigApplied(cfg)

	e.router = view.NewRouter(e.deps.Sched, e.sess, e.deps.Renderer, cfg, e.deps.Log)
	e.api = api.New(cfg.BackendURL, cfg.TenantCode, e.deps.HTTPClient, e.deps.Log)

	newChannel := e.deps.NewChannel
	if newChannel == nil {
		newChannel = func(cfg domain.Config) (stream.Channel, error) {
			return stream.NewWSChannel(cfg.SocketURL, cfg.TenantCode, e.deps.PageURL, e.deps.Log)
		}
	}
	ch, err := newChannel(cfg)
	if err != nil {
		return err
	}
	e.stream = stream.New(ch, e.deps.Sched, e.sess, e.ts, e, cfg.TenantCode, e.deps.PageURL, e.deps.Log)
	if err := e.stream.Connect(ctx); err != nil {
		return err
	}

	if err := e.deps.Bridge.NotifyInitialized(); err != nil {
		e.log.Error().Err(err).Msg("initialized notification failed")
	}

	// Rejoin the persisted conversation so push events resume flowing.
	if id := e.sess.ConversationID(); id != "" {
		if err := e.stream.JoinChat(id); err != nil {
			e.log.Error().Err(err).Str("chatId", id).Msg("rejoin failed")
		}
	}

	e.prefetchArticles(ctx)

	e.deps.Sched.Post(func() {
		if !e.cfg.TabsEnabled() {
			// Without tabs the widget lives on the messages section.
			e.router.SwitchTab(domain.TabMessages, true)
		}
		if e.cfg.AutoOpen && !e.sess.Expanded() {
			e.ToggleWidget()
		}
	})

	e.log.Info().Str("tenant", cfg.TenantCode).Msg("widget started")
	return nil
}

// Close tears down the realtime stream.
func (e *Engine) Close() error {
	if e.stream != nil {
		return e.stream.Close()
	}
	return nil
}

// Session exposes the session record, mainly for inspection.
func (e *Engine) Session() *session.Context { return e.sess }

// Transcript exposes the active transcript, mainly for inspection.
func (e *Engine) Transcript() *transcript.Transcript { return e.ts }

// Config returns the negotiated configuration.
func (e *Engine) Config() domain.Config { return e.cfg }

// ---- widget expansion ----

// Expanded reports whether the widget window is open.
func (e *Engine) Expanded() bool { return e.sess.Expanded() }

// ToggleWidget opens or closes the widget window, notifying the host so it
// can resize the iframe. Collapsing returns to the home tab.
func (e *Engine) ToggleWidget() {
	if e.sess.Expanded() {
		e.sess.SetExpanded(false)
		if err := e.deps.Bridge.NotifyCollapse(); err != nil {
			e.log.Error().Err(err).Msg("collapse notification failed")
		}
		e.deps.Renderer.ExpandedChanged(false)
		if e.cfg.TabsEnabled() {
			e.router.SwitchTab(domain.TabHome, false)
		}
		return
	}

	e.sess.SetExpanded(true)
	if err := e.deps.Bridge.NotifyExpand(expandedWidth, expandedHeight); err != nil {
		e.log.Error().Err(err).Msg("expand notification failed")
	}
	e.deps.Renderer.ExpandedChanged(true)
}

// ---- email and conversations ----

// SubmitEmail records the visitor's email and moves on to the conversation
// list. An empty submission is rejected.
func (e *Engine) SubmitEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	e.sess.SetEmail(email)
	e.router.Show(domain.ViewConversations, domain.DirRight, view.HeaderProps{})
	e.RefreshConversations(true)
	return nil
}

// RefreshConversations fetches the visitor's conversation list. With
// autoSelect, a conversation still open on the server is entered directly.
func (e *Engine) RefreshConversations(autoSelect bool) {
	email := e.sess.Email()
	if email == "" {
		return
	}
	go func() {
		convs, err := e.api.Conversations(context.Background(), email)
		e.deps.Sched.Post(func() { e.applyConversations(convs, err, autoSelect) })
	}()
}

func (e *Engine) applyConversations(convs []domain.Conversation, err error, autoSelect bool) {
	if err != nil {
		e.log.Error().Err(err).Msg("conversation list fetch failed")
		e.deps.Renderer.Notice(e.cfg.Phrases.Get("Something went wrong. Please try again."))
		return
	}
	e.deps.Renderer.ConversationsListed(convs)

	if !autoSelect {
		return
	}
	for _, c := range convs {
		if c.Status == domain.StatusOpen {
			e.OpenConversation(c.ID)
			return
		}
	}
}

// OpenConversation makes id the active conversation: join its event room,
// present the chat view, and load its history. The history response is
// discarded if the active conversation changed while it was in flight.
func (e *Engine) OpenConversation(id string) {
	e.sess.SetConversation(id)
	if err := e.stream.JoinChat(id); err != nil {
		e.log.Error().Err(err).Str("chatId", id).Msg("join failed")
	}
	e.router.Show(domain.ViewChat, domain.DirRight, view.HeaderProps{})

	go func() {
		conv, err := e.api.Conversation(context.Background(), id)
		e.deps.Sched.Post(func() { e.applyConversation(id, conv, err) })
	}()
}

// applyConversation applies a fetched history, unless it is stale.
func (e *Engine) applyConversation(fetchedID string, conv domain.Conversation, err error) {
	if e.sess.ConversationID() != fetchedID {
		e.log.Debug().Str("chatId", fetchedID).Msg("stale history response discarded")
		return
	}
	if err != nil {
		e.log.Error().Err(err).Str("chatId", fetchedID).Msg("history fetch failed")
		e.systemNotice(e.cfg.Phrases.Get("Something went wrong. Please try again."))
		return
	}

	e.ts.Load(conv.ID, conv.Status, conv.Messages)
	e.deps.Renderer.TranscriptLoaded(e.ts.Messages())
	e.syncInput()
}

// StartNewChat clears any active conversation and asks the backend for a
// fresh one. The new id arrives asynchronously via new_chat_data.
func (e *Engine) StartNewChat() {
	e.sess.ClearConversation()
	e.ts.Clear()
	e.deps.Renderer.TranscriptLoaded(nil)
	e.router.Show(domain.ViewChat, domain.DirRight, view.HeaderProps{})
	e.syncInput()

	go func() {
		country, err := e.deps.Geo.Country(context.Background())
		if err != nil {
			e.log.Warn().Err(err).Msg("country lookup failed, creating untagged chat")
		}
		e.deps.Sched.Post(func() {
			if err := e.stream.CreateNewChat(country); err != nil {
				e.log.Error().Err(err).Msg("create_new_chat failed")
				e.systemNotice(e.cfg.Phrases.Get("Something went wrong. Please try again."))
			}
		})
	}()
}

// BackToConversations leaves the chat view and drops the active
// conversation, so push events for it no longer address this widget state.
func (e *Engine) BackToConversations() {
	e.sess.ClearConversation()
	e.ts.Clear()
	e.router.Show(domain.ViewConversations, domain.DirLeft, view.HeaderProps{})
	e.RefreshConversations(false)
	e.syncInput()
}

// ---- messaging ----

// SendMessage sends a visitor message, uploading attachments first. On
// upload failure nothing is consumed: the error is returned and the caller
// keeps the draft for retry.
func (e *Engine) SendMessage(ctx context.Context, text string, attachments []api.UploadFile) error {
	if text == "" && len(attachments) == 0 {
		return nil
	}
	if !e.sess.InputVisible() {
		return errors.New("widget: input is not available")
	}

	var fileURL string
	if len(attachments) > 0 {
		res, err := e.api.Upload(ctx, e.sess.ConversationID(), attachments)
		if err != nil {
			e.log.Error().Err(err).Msg("attachment upload failed")
			e.deps.Renderer.Notice(e.cfg.Phrases.Get("Upload failed. Please try again."))
			return err
		}
		if len(res.URLs) > 0 {
			fileURL = res.URLs[0]
		}
	}

	msg := domain.Message{
		Sender:        domain.Sender{Kind: domain.SenderVisitor},
		Text:          text,
		Timestamp:     timeNow(),
		AttachmentURL: fileURL,
	}
	if e.ts.Append(msg) {
		e.deps.Renderer.MessageArrived(msg)
	}
	e.syncInput()

	if err := e.stream.SendMessage(text, fileURL); err != nil {
		e.log.Error().Err(err).Msg("message emit failed")
		return err
	}
	return nil
}

// SelectOption answers a quick-reply option set. The selection is an
// ordinary visitor message, which also resolves the option set and brings
// the input back.
func (e *Engine) SelectOption(ctx context.Context, option string) error {
	if option == "" {
		return nil
	}

	msg := domain.Message{
		Sender:    domain.Sender{Kind: domain.SenderVisitor},
		Text:      option,
		Timestamp: timeNow(),
	}
	if e.ts.Append(msg) {
		e.deps.Renderer.MessageArrived(msg)
	}
	e.syncInput()

	return e.stream.SendMessage(option, "")
}

// ---- tabs and articles ----

// SwitchTab selects a top-level tab.
func (e *Engine) SwitchTab(tab domain.Tab) {
	e.router.SwitchTab(tab, false)
	if tab == domain.TabHelp && len(e.articles) == 0 {
		e.prefetchArticles(context.Background())
	}
}

// ShowMessagesDefault presents the messages section's default view.
func (e *Engine) ShowMessagesDefault() {
	e.router.Show(e.router.DefaultMessagesView(), domain.DirRight, view.HeaderProps{})
	e.RefreshConversations(false)
}

// ShowArticles presents the article list.
func (e *Engine) ShowArticles() {
	e.router.Show(domain.ViewArticles, domain.DirLeft, view.HeaderProps{})
	e.deps.Renderer.ArticlesListed(e.articles)
}

// SearchArticles filters the fetched article list by a query.
func (e *Engine) SearchArticles(query string) {
	e.deps.Renderer.ArticlesListed(domain.FilterArticles(e.articles, query))
}

// OpenArticle presents an already-fetched article and loads its body. It
// reports false when the id is not in the fetched list.
func (e *Engine) OpenArticle(id string) bool {
	article, ok := e.findArticle(id)
	if !ok {
		return false
	}

	e.currentArticleID = id
	e.router.Show(domain.ViewArticleContent, domain.DirRight, view.HeaderProps{
		Title:       article.Title,
		Description: article.Description,
	})

	go func() {
		body, err := e.api.ArticleBody(context.Background(), id)
		e.deps.Sched.Post(func() { e.applyArticleBody(id, article, body, err) })
	}()
	return true
}

func (e *Engine) applyArticleBody(fetchedID string, article domain.Article, body string, err error) {
	if e.currentArticleID != fetchedID {
		e.log.Debug().Str("articleId", fetchedID).Msg("stale article body discarded")
		return
	}
	if err != nil {
		e.log.Error().Err(err).Str("articleId", fetchedID).Msg("article body fetch failed")
		e.deps.Renderer.Notice(e.cfg.Phrases.Get("Something went wrong. Please try again."))
		return
	}
	e.deps.Renderer.ArticleShown(article, e.md.Convert(body))
}

// BackToArticles leaves article content for the list.
func (e *Engine) BackToArticles() {
	e.currentArticleID = ""
	e.ShowArticles()
}

func (e *Engine) findArticle(id string) (domain.Article, bool) {
	for _, a := range e.articles {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Article{}, false
}

func (e *Engine) prefetchArticles(ctx context.Context) {
	go func() {
		articles, err := e.api.Articles(ctx)
		e.deps.Sched.Post(func() {
			if err != nil {
				e.log.Warn().Err(err).Msg("article prefetch failed")
				return
			}
			e.articles = articles
			e.deps.Renderer.ArticlesListed(articles)
		})
	}()
}

// ---- deep links and host navigation ----

// ResolveDeepLink executes an encoded deep link.
func (e *Engine) ResolveDeepLink(encoded string) {
	e.resolver.Resolve(encoded)
}

// OpenURL asks the host page to navigate.
func (e *Engine) OpenURL(url string, newWindow bool) {
	e.deps.Renderer.NavigateHost(url, newWindow)
}

// ---- stream notifications ----

// MessageArrived forwards a pushed message to the renderer.
func (e *Engine) MessageArrived(m domain.Message) { e.deps.Renderer.MessageArrived(m) }

// TypingChanged forwards the typing-indicator flag.
func (e *Engine) TypingChanged(on bool) { e.deps.Renderer.TypingChanged(on) }

// InputVisibilityChanged forwards input visibility.
func (e *Engine) InputVisibilityChanged(visible bool) {
	e.deps.Renderer.InputVisibilityChanged(visible)
}

// ConversationJoined records that a created conversation is now live.
func (e *Engine) ConversationJoined(id string) {
	e.log.Info().Str("chatId", id).Msg("conversation created")
}

// ---- helpers ----

// systemNotice surfaces an error inline in the transcript when a
// conversation context exists, and as a renderer notice otherwise.
func (e *Engine) systemNotice(text string) {
	if e.ts.ConversationID() == "" {
		e.deps.Renderer.Notice(text)
		return
	}
	msg := domain.Message{
		Sender:    domain.Sender{Kind: domain.SenderBot},
		Text:      text,
		Timestamp: timeNow(),
	}
	if e.ts.Append(msg) {
		e.deps.Renderer.MessageArrived(msg)
	}
}

// syncInput publishes the transcript-derived input visibility when it
// changed.
func (e *Engine) syncInput() {
	v := e.ts.InputVisible()
	if v == e.sess.InputVisible() {
		return
	}
	e.sess.SetInputVisible(v)
	e.deps.Renderer.InputVisibilityChanged(v)
}
