package hostbridge

import "github.com/solvyn/widgetcore/internal/domain"

// Message types exchanged with the host page.
const (
	TypeRequestConfig = "requestChatbotConfig"
	TypeConfig        = "chatbotConfig"
	TypeInitialized   = "initialized"
	TypeExpand        = "chatbotExpand"
	TypeCollapse      = "chatbotCollapse"
)

// Envelope is the cross-document message format. Type discriminates;
// the remaining fields are populated per type.
type Envelope struct {
	Type string `json:"type"`

	// chatbotExpand
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`

	// chatbotConfig
	Config *domain.Config `json:"config,omitempty"`
}

// Bus is the cross-frame transport the widget runs over. Post sends an
// envelope to the host page; Inbound delivers envelopes from it in arrival
// order.
type Bus interface {
	Post(Envelope) error
	Inbound() <-chan Envelope
}
