package domain

// Config is the widget configuration supplied by the host page during the
// cross-frame handshake. It is immutable for the page lifetime.
type Config struct {
	BackendURL string `json:"backendUrl"`
	SocketURL  string `json:"socketIoUrl"`
	TenantCode string `json:"chatbotCode"`

	Theme      string `json:"theme,omitempty"` // "light" | "dark"
	Gradient1  string `json:"gradient1,omitempty"`
	Gradient2  string `json:"gradient2,omitempty"`
	HeaderText string `json:"headerText,omitempty"`
	LogoURL    string `json:"logoUrl,omitempty"`
	BgImageURL string `json:"bgImageUrl,omitempty"`
	BgColor    string `json:"bgColor,omitempty"`

	AutoOpen bool  `json:"autoOpen,omitempty"`
	Branding bool  `json:"branding,omitempty"`
	TabsMode *bool `json:"tabsMode,omitempty"` // nil means enabled

	Heading       *Heading `json:"heading,omitempty"`
	StaffInitials []string `json:"staffInitials,omitempty"`
	HomeTab       HomeTab  `json:"homeTab,omitempty"`

	Phrases PhraseTable `json:"translatedPhrases,omitempty"`
}

// Heading customizes the home screen heading.
type Heading struct {
	Text        string `json:"text"`
	Color       string `json:"color,omitempty"`
	FontSize    string `json:"fontSize,omitempty"`
	Shadow      bool   `json:"shadow,omitempty"`
	ShadowColor string `json:"shadowColor,omitempty"`
}

// HomeTab configures the home screen's quick actions and help shortcuts.
type HomeTab struct {
	QuickActions []QuickAction  `json:"qickActionsButtons,omitempty"`
	HelpSection  []HelpShortcut `json:"helpSection,omitempty"`
}

// QuickAction is a home screen button carrying a deep link.
type QuickAction struct {
	Text     string `json:"text"`
	Icon     string `json:"icon,omitempty"`
	DeepLink string `json:"deepLink"`
}

// HelpShortcut is a home screen link to a help article.
type HelpShortcut struct {
	Title    string `json:"title"`
	DeepLink string `json:"deepLink"`
}

// PhraseTable maps canonical English phrases to host-supplied translations.
type PhraseTable map[string]string

// Get returns the translation for a phrase, falling back to the phrase
// itself when the table has no entry.
func (p PhraseTable) Get(phrase string) string {
	if p == nil {
		return phrase
	}
	if v, ok := p[phrase]; ok && v != "" {
		return v
	}
	return phrase
}

// TabsEnabled reports whether the tab bar is active. The host disables it
// by sending tabsMode: false.
func (c Config) TabsEnabled() bool {
	return c.TabsMode == nil || *c.TabsMode
}
