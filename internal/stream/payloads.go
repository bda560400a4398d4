package stream

import "github.com/solvyn/widgetcore/internal/domain"

// newChatDataPayload announces a freshly created conversation.
type newChatDataPayload struct {
	Chat struct {
		ID string `json:"_id"`
	} `json:"chat"`
}

// replyPayload carries one inbound transcript message. The chat id is
// optional; when present it must match the active conversation.
type replyPayload struct {
	ChatID    string   `json:"chatId,omitempty"`
	Sender    string   `json:"sender"`
	Text      string   `json:"text"`
	Timestamp string   `json:"timestamp,omitempty"`
	Options   []string `json:"options,omitempty"`
	FileURL   string   `json:"fileUrl,omitempty"`
}

// chatUpdatePayload carries a status change and/or bot message for a
// specific conversation.
type chatUpdatePayload struct {
	ChatID  string   `json:"chatId"`
	Sender  string   `json:"sender,omitempty"`
	Message string   `json:"message,omitempty"`
	Options []string `json:"options,omitempty"`
	Status  string   `json:"status,omitempty"`
	FileURL string   `json:"fileUrl,omitempty"`
}

// joinChatPayload subscribes the connection to a conversation's room.
type joinChatPayload struct {
	ChatID string `json:"chatId"`
}

// createNewChatPayload asks the backend to open a conversation.
type createNewChatPayload struct {
	TenantCode string             `json:"chatbotCode"`
	Email      string             `json:"email"`
	Country    domain.CountryInfo `json:"country"`
}

// messagePayload sends one visitor message.
type messagePayload struct {
	TenantCode string `json:"chatbotCode"`
	ChatID     string `json:"chatId"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	PageURL    string `json:"currentWebsiteURL"`
	FileURL    string `json:"fileUrl,omitempty"`
}
