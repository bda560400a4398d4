package deeplink

import (
	"time"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/runloop"
)

// viewSettle is how long the resolver waits after switching tabs before
// resolving the view, so the tab's own transition has settled first.
const viewSettle = 500 * time.Millisecond

// Navigator is the slice of engine behavior the resolver drives.
type Navigator interface {
	Expanded() bool
	ToggleWidget()
	SwitchTab(tab domain.Tab)

	// OpenArticle shows the article-content view for an already-fetched
	// article, reporting false when the id is unknown.
	OpenArticle(id string) bool
	ShowArticles()

	StartNewChat()
	OpenConversation(id string)
	ShowMessagesDefault()

	OpenURL(url string, newWindow bool)
}

// Resolver turns parsed deep links into navigation.
type Resolver struct {
	sched runloop.Scheduler
	nav   Navigator
	log   *logging.Logger
}

// NewResolver creates a resolver.
func NewResolver(sched runloop.Scheduler, nav Navigator, log *logging.Logger) *Resolver {
	return &Resolver{sched: sched, nav: nav, log: log.Sub("deeplink")}
}

// Resolve parses and executes an encoded deep link. A malformed string is
// logged and changes no state.
func (r *Resolver) Resolve(encoded string) {
	target, err := Parse(encoded)
	if err != nil {
		r.log.Warn().Err(err).Str("encoded", encoded).Msg("deep link dropped")
		return
	}

	if target.External() {
		r.nav.OpenURL(target.URL, target.NewWindow)
		return
	}

	if !r.nav.Expanded() {
		r.nav.ToggleWidget()
	}

	r.sched.Post(func() {
		r.nav.SwitchTab(target.Tab)
		r.sched.After(viewSettle, func() {
			r.resolveView(target)
		})
	})
}

func (r *Resolver) resolveView(target domain.DeepLinkTarget) {
	switch target.View {
	case domain.ViewArticleContent:
		if target.ElementID != "" && r.nav.OpenArticle(target.ElementID) {
			return
		}
		r.log.Warn().Str("articleId", target.ElementID).Msg("article not found, showing list")
		r.nav.ShowArticles()
	case domain.ViewArticles:
		r.nav.ShowArticles()
	case domain.ViewChat:
		if target.StartsNew() {
			r.nav.StartNewChat()
			return
		}
		r.nav.OpenConversation(target.ElementID)
	case domain.ViewConversations, domain.ViewEmail, "":
		r.nav.ShowMessagesDefault()
	default:
		r.log.Warn().Str("view", string(target.View)).Msg("unknown deep link view")
	}
}
