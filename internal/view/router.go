// Package view drives the widget's view transitions. Exactly one view is
// visible at a time; transitions run through a phased machine so a
// half-finished fade can never be corrupted by a competing navigation.
package view

import (
	"time"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/runloop"
	"github.com/solvyn/widgetcore/internal/session"
)

// Phase is the transition machine state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFadingOut
	PhaseSwitching
	PhaseFadingIn
)

// Transition choreography. The outgoing views fade for 200ms, the target
// reaches steady state 50ms after it appears, and its footer follows 50ms
// later (100ms after the switch).
const (
	fadeOutDuration = 200 * time.Millisecond
	settleDelay     = 50 * time.Millisecond
	footerDelay     = 100 * time.Millisecond
)

// Sink receives render instructions. Implementations translate these into
// whatever presentation layer hosts the engine; the router never touches
// presentation directly.
type Sink interface {
	ViewsHidden(dir domain.Direction)
	ViewShown(v domain.View, dir domain.Direction)
	ViewSettled(v domain.View)
	FooterShown(v domain.View)
	HeaderChanged(h Header)
	TabChanged(tab domain.Tab)
}

type showRequest struct {
	view  domain.View
	dir   domain.Direction
	props HeaderProps
}

// Router owns view transitions and tab selection.
type Router struct {
	sched runloop.Scheduler
	sess  *session.Context
	sink  Sink
	cfg   domain.Config
	log   *logging.Logger

	phase   Phase
	pending *showRequest
}

// NewRouter creates a view router. All methods must be called from the run
// loop.
func NewRouter(sched runloop.Scheduler, sess *session.Context, sink Sink, cfg domain.Config, log *logging.Logger) *Router {
	return &Router{
		sched: sched,
		sess:  sess,
		sink:  sink,
		cfg:   cfg,
		log:   log.Sub("views"),
	}
}

// Phase returns the current transition phase.
func (r *Router) Phase() Phase {
	return r.phase
}

// Show transitions to the named view. A request arriving while a
// transition is in flight is coalesced: only the latest pending request
// runs once the current transition settles, so a stale timer can never
// present a view that is no longer the target.
func (r *Router) Show(v domain.View, dir domain.Direction, props HeaderProps) {
	if r.phase != PhaseIdle {
		r.pending = &showRequest{view: v, dir: dir, props: props}
		r.log.Debug().Str("view", string(v)).Msg("transition in flight, request coalesced")
		return
	}
	r.begin(showRequest{view: v, dir: dir, props: props})
}

func (r *Router) begin(req showRequest) {
	r.phase = PhaseFadingOut
	r.sink.ViewsHidden(req.dir)

	r.sched.After(fadeOutDuration, func() {
		r.phase = PhaseSwitching
		r.sink.ViewShown(req.view, req.dir)
		r.sink.HeaderChanged(HeaderFor(req.view, r.cfg, req.props))
		r.sess.SetView(req.view)
		r.phase = PhaseFadingIn

		r.sched.After(settleDelay, func() {
			r.sink.ViewSettled(req.view)
		})
		r.sched.After(footerDelay, func() {
			if hasFooter(req.view) {
				r.sink.FooterShown(req.view)
			}
			r.settle(req.view)
		})
	})
}

func (r *Router) settle(v domain.View) {
	r.phase = PhaseIdle
	r.log.Debug().Str("view", string(v)).Msg("view settled")
	if r.pending != nil {
		next := *r.pending
		r.pending = nil
		r.begin(next)
	}
}

// hasFooter reports whether a view has an associated footer region: the
// new-conversation button for the list, the input area for the chat.
func hasFooter(v domain.View) bool {
	return v == domain.ViewConversations || v == domain.ViewChat
}

// SwitchTab selects a top-level tab and presents its default view. With
// tabs disabled by the host the call is ignored unless forced (the engine
// forces an initial switch to messages in that mode).
func (r *Router) SwitchTab(tab domain.Tab, force bool) {
	if !r.cfg.TabsEnabled() && !force {
		return
	}

	r.sess.SetTab(tab)
	r.sink.TabChanged(tab)

	switch tab {
	case domain.TabHelp:
		r.Show(domain.ViewArticles, domain.DirLeft, HeaderProps{})
	case domain.TabMessages:
		if r.sess.Email() == "" {
			r.Show(domain.ViewEmail, domain.DirRight, HeaderProps{})
			return
		}
		// Already reading a conversation: stay there.
		if r.sess.View() != domain.ViewChat {
			r.Show(domain.ViewConversations, domain.DirRight, HeaderProps{})
		}
	case domain.TabHome:
		// The home panel lives outside the view regions; hiding the
		// current view is all the router contributes.
	}
}

// DefaultMessagesView returns the view the messages tab opens with, which
// depends on whether a visitor email is known.
func (r *Router) DefaultMessagesView() domain.View {
	if r.sess.Email() == "" {
		return domain.ViewEmail
	}
	return domain.ViewConversations
}
