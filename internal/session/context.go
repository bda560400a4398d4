// Package session holds the widget's single shared mutable record. Every
// component reads and mutates it through one Context value created at
// startup; there are no ambient globals.
package session

import (
	"sync"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/store"
)

// Context is the widget-level mutable state. The email and active
// conversation id write through to the durable store so they survive a
// reload. All other fields are per-page-lifetime.
//
// Mutations happen on the run loop; the mutex only covers reads from
// transport goroutines that have not yet hopped onto the loop.
type Context struct {
	mu sync.RWMutex

	email          string
	conversationID string
	expanded       bool
	typing         bool
	view           domain.View
	tab            domain.Tab
	inputVisible   bool

	st  store.Store
	log *logging.Logger
}

// New creates a Context seeded from the durable store. A missing email
// leaves the initial view at email capture; otherwise conversations.
func New(st store.Store, log *logging.Logger) (*Context, error) {
	c := &Context{
		st:           st,
		log:          log.Sub("session"),
		tab:          domain.TabHome,
		inputVisible: true,
	}

	email, ok, err := st.Get(store.KeyVisitorEmail)
	if err != nil {
		return nil, err
	}
	if ok {
		c.email = email
	}

	convID, ok, err := st.Get(store.KeyConversationID)
	if err != nil {
		return nil, err
	}
	if ok {
		c.conversationID = convID
	}

	if c.email == "" {
		c.view = domain.ViewEmail
	} else {
		c.view = domain.ViewConversations
	}

	c.log.Debug().
		Bool("hasEmail", c.email != "").
		Bool("hasConversation", c.conversationID != "").
		Msg("session restored")
	return c, nil
}

// Email returns the persisted visitor email, empty when unknown.
func (c *Context) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

// SetEmail stores the visitor email durably.
func (c *Context) SetEmail(email string) {
	c.mu.Lock()
	c.email = email
	c.mu.Unlock()
	if err := c.st.Set(store.KeyVisitorEmail, email); err != nil {
		c.log.Error().Err(err).Msg("persisting email failed")
	}
}

// ConversationID returns the active conversation id, empty when none.
func (c *Context) ConversationID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conversationID
}

// SetConversation makes id the active conversation and persists it.
func (c *Context) SetConversation(id string) {
	c.mu.Lock()
	c.conversationID = id
	c.mu.Unlock()
	if err := c.st.Set(store.KeyConversationID, id); err != nil {
		c.log.Error().Err(err).Msg("persisting conversation id failed")
	}
}

// ClearConversation drops the active conversation, durably.
func (c *Context) ClearConversation() {
	c.mu.Lock()
	c.conversationID = ""
	c.mu.Unlock()
	if err := c.st.Delete(store.KeyConversationID); err != nil {
		c.log.Error().Err(err).Msg("clearing conversation id failed")
	}
}

// Expanded reports whether the widget window is open.
func (c *Context) Expanded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expanded
}

// SetExpanded records the widget expansion state.
func (c *Context) SetExpanded(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded = v
}

// Typing reports whether the typing indicator is showing.
func (c *Context) Typing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.typing
}

// SetTyping records the typing-indicator state.
func (c *Context) SetTyping(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing = v
}

// View returns the currently presented view.
func (c *Context) View() domain.View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// SetView records the currently presented view.
func (c *Context) SetView(v domain.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
}

// Tab returns the selected top-level tab.
func (c *Context) Tab() domain.Tab {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tab
}

// SetTab records the selected top-level tab.
func (c *Context) SetTab(t domain.Tab) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = t
}

// InputVisible reports whether the message input is shown instead of the
// "choose an option" notice.
func (c *Context) InputVisible() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inputVisible
}

// SetInputVisible records the input visibility flag.
func (c *Context) SetInputVisible(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputVisible = v
}
