package view

import "github.com/solvyn/widgetcore/internal/domain"

// Header is the header/footer chrome derived from the current view. It is
// a pure function of the view name (plus supplied title/description for
// article content); it carries no state of its own.
type Header struct {
	Title              string
	Subtitle           string
	ShowBackToChats    bool
	ShowBackToArticles bool
	FooterVisible      bool
}

// HeaderProps supplies the dynamic title and description used by the
// articleContent view.
type HeaderProps struct {
	Title       string
	Description string
}

// HeaderFor derives the header chrome for a view. The tab-bar footer is
// always hidden when the host disabled tabs.
func HeaderFor(v domain.View, cfg domain.Config, props HeaderProps) Header {
	t := cfg.Phrases
	var h Header

	switch v {
	case domain.ViewEmail:
		h = Header{
			Title:         cfg.HeaderText,
			Subtitle:      t.Get("We're here to help!"),
			FooterVisible: true,
		}
	case domain.ViewConversations:
		h = Header{
			Title:         t.Get("Your Conversations"),
			Subtitle:      t.Get("Select a chat or start new one"),
			FooterVisible: true,
		}
	case domain.ViewChat:
		h = Header{
			Title:           t.Get("Live Chat"),
			Subtitle:        t.Get("Connected with support"),
			ShowBackToChats: true,
		}
	case domain.ViewArticles:
		h = Header{
			Title:         t.Get("Help & Support"),
			Subtitle:      t.Get("Find answers to common questions and get help with using our platform."),
			FooterVisible: true,
		}
	case domain.ViewArticleContent:
		h = Header{
			Title:              props.Title,
			Subtitle:           props.Description,
			ShowBackToArticles: true,
		}
	}

	if !cfg.TabsEnabled() {
		h.FooterVisible = false
	}
	return h
}
