package domain

// View names the panel currently presented inside the widget. Exactly one
// view is visible at a time.
type View string

const (
	ViewEmail          View = "email"
	ViewConversations  View = "conversations"
	ViewChat           View = "chat"
	ViewArticles       View = "articles"
	ViewArticleContent View = "articleContent"
)

// Tab names a top-level widget section. Tab and view are orthogonal: the
// tab selects the section, the view selects the panel within it.
type Tab string

const (
	TabHome     Tab = "home"
	TabMessages Tab = "messages"
	TabHelp     Tab = "help"
)

// Direction controls which side a view transition slides from.
type Direction string

const (
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// DeepLinkTarget is a parsed navigation intent. Either URL is set (external
// link form) or Tab/View/ElementID are (internal triple form). It is
// consumed immediately after parsing and never persisted.
type DeepLinkTarget struct {
	Tab       Tab
	View      View
	ElementID string // article id, conversation id, or "" meaning "start new"

	URL       string
	NewWindow bool
}

// External reports whether the target is a plain URL navigation.
func (t DeepLinkTarget) External() bool {
	return t.URL != ""
}

// StartsNew reports whether an internal chat target means "start a new
// conversation" rather than opening an existing one.
func (t DeepLinkTarget) StartsNew() bool {
	return t.ElementID == ""
}
