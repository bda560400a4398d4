package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSender(t *testing.T) {
	tests := []struct {
		wire string
		want Sender
	}{
		{"user", Sender{Kind: SenderVisitor}},
		{"bot", Sender{Kind: SenderBot}},
		{"ai", Sender{Kind: SenderAIAssistant}},
		{"owner", Sender{Kind: SenderOwner}},
		{"staff-Maya", Sender{Kind: SenderStaff, Name: "Maya"}},
		{"garbage", Sender{Kind: SenderBot}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSender(tt.wire), "wire %q", tt.wire)
	}
}

func TestSenderWireRoundTrip(t *testing.T) {
	senders := []Sender{
		{Kind: SenderVisitor},
		{Kind: SenderBot},
		{Kind: SenderAIAssistant},
		{Kind: SenderStaff, Name: "Jo"},
		{Kind: SenderOwner},
	}
	for _, s := range senders {
		assert.Equal(t, s, ParseSender(s.Wire()))
	}
}

func TestSenderLabel(t *testing.T) {
	phrases := PhraseTable{"You": "Du", "Bot": "Robot"}

	assert.Equal(t, "Du", Sender{Kind: SenderVisitor}.Label(phrases))
	assert.Equal(t, "Robot", Sender{Kind: SenderBot}.Label(phrases))
	assert.Equal(t, "Maya", Sender{Kind: SenderStaff, Name: "Maya"}.Label(phrases))
	// Missing entries fall back to the phrase itself.
	assert.Equal(t, "Owner", Sender{Kind: SenderOwner}.Label(phrases))
}

func TestSenderInbound(t *testing.T) {
	assert.False(t, Sender{Kind: SenderVisitor}.Inbound())
	assert.True(t, Sender{Kind: SenderBot}.Inbound())
	assert.True(t, Sender{Kind: SenderStaff, Name: "Jo"}.Inbound())
}

func TestPhraseTableFallback(t *testing.T) {
	var p PhraseTable
	assert.Equal(t, "Welcome!", p.Get("Welcome!"))

	p = PhraseTable{"Welcome!": ""}
	assert.Equal(t, "Welcome!", p.Get("Welcome!"))
}

func TestTabsEnabled(t *testing.T) {
	var c Config
	assert.True(t, c.TabsEnabled())

	off := false
	c.TabsMode = &off
	assert.False(t, c.TabsEnabled())
}

func TestFilterArticles(t *testing.T) {
	articles := []Article{
		{ID: "1", Title: "Billing FAQ", Description: "Invoices and refunds"},
		{ID: "2", Title: "Getting Started", Description: "Setup guide"},
	}

	assert.Len(t, FilterArticles(articles, ""), 2)
	assert.Len(t, FilterArticles(articles, "billing"), 1)
	assert.Len(t, FilterArticles(articles, "GUIDE"), 1)
	assert.Empty(t, FilterArticles(articles, "nothing"))
}
