package domain

import "time"

// ConversationStatus is the server-side lifecycle state of a conversation.
type ConversationStatus string

const (
	StatusOpen   ConversationStatus = "open"
	StatusClosed ConversationStatus = "closed"
)

// Conversation is a support conversation as fetched from the backend.
// Status transitions (open to closed and back) are observed via push events.
type Conversation struct {
	ID        string             `json:"_id"`
	Name      string             `json:"name"`
	Status    ConversationStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Messages  []Message          `json:"-"`
}

// CountryInfo tags a new conversation with the visitor's location.
type CountryInfo struct {
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Flag        string `json:"flag"`
}
