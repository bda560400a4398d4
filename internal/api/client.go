// Package api is the REST client for the widget backend. The realtime
// channel handles live events; this client covers bulk reads (conversation
// history, conversation lists, help articles) and file uploads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
)

// Client talks to the widget backend over HTTP.
type Client struct {
	base       string
	tenantCode string
	http       *http.Client
	log        *logging.Logger
}

// New creates a REST client. A nil httpClient falls back to a client with a
// 15s timeout.
func New(baseURL, tenantCode string, httpClient *http.Client, log *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		base:       strings.TrimSuffix(baseURL, "/"),
		tenantCode: tenantCode,
		http:       httpClient,
		log:        log.Sub("api"),
	}
}

// wireMessage is a transcript message as the backend serializes it.
type wireMessage struct {
	Sender    string   `json:"sender"`
	Text      string   `json:"text"`
	Timestamp string   `json:"timestamp"`
	Options   []string `json:"options,omitempty"`
	FileURL   string   `json:"fileUrl,omitempty"`
}

func (w wireMessage) toDomain() domain.Message {
	ts, err := time.Parse(time.RFC3339, w.Timestamp)
	if err != nil {
		ts = time.Time{}
	}
	return domain.Message{
		Sender:        domain.ParseSender(w.Sender),
		Text:          w.Text,
		Timestamp:     ts,
		Options:       w.Options,
		AttachmentURL: w.FileURL,
	}
}

// wireConversation mirrors the backend conversation document. The messages
// field arrives either as a JSON array or as a JSON-encoded string holding
// one, depending on the backend version.
type wireConversation struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Messages  json.RawMessage `json:"messages,omitempty"`
}

func (w wireConversation) toDomain() (domain.Conversation, error) {
	conv := domain.Conversation{
		ID:        w.ID,
		Name:      w.Name,
		Status:    domain.ConversationStatus(w.Status),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if conv.Status == "" {
		conv.Status = domain.StatusOpen
	}

	msgs, err := decodeMessages(w.Messages)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("conversation %s: %w", w.ID, err)
	}
	conv.Messages = msgs
	return conv, nil
}

// decodeMessages handles both encodings of the messages field. A leading
// quote means the array itself was serialized into a string.
func decodeMessages(raw json.RawMessage) ([]domain.Message, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var nested string
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, fmt.Errorf("decoding messages string: %w", err)
		}
		raw = json.RawMessage(nested)
	}

	var wire []wireMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decoding messages array: %w", err)
	}
	out := make([]domain.Message, 0, len(wire))
	for _, m := range wire {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// Conversation fetches one conversation with its full message history.
func (c *Client) Conversation(ctx context.Context, id string) (domain.Conversation, error) {
	var wire wireConversation
	if err := c.getJSON(ctx, "/api/chats/"+url.PathEscape(id), &wire); err != nil {
		return domain.Conversation{}, err
	}
	return wire.toDomain()
}

// Conversations fetches the visitor's conversations, most recently updated
// first.
func (c *Client) Conversations(ctx context.Context, email string) ([]domain.Conversation, error) {
	path := "/api/chats/" + url.PathEscape(c.tenantCode) + "/" + url.PathEscape(email)
	var wire []wireConversation
	if err := c.getJSON(ctx, path, &wire); err != nil {
		return nil, err
	}

	out := make([]domain.Conversation, 0, len(wire))
	for _, w := range wire {
		conv, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Articles fetches the tenant's help articles.
func (c *Client) Articles(ctx context.Context) ([]domain.Article, error) {
	var out []domain.Article
	if err := c.getJSON(ctx, "/api/websites/faqs/"+url.PathEscape(c.tenantCode), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// articleBody is the content document for one article.
type articleBody struct {
	Content string `json:"content"`
}

// ArticleBody fetches the full markdown body of one article.
func (c *Client) ArticleBody(ctx context.Context, articleID string) (string, error) {
	path := "/api/websites/faqs/" + url.PathEscape(c.tenantCode) + "/" + url.PathEscape(articleID)
	var body articleBody
	if err := c.getJSON(ctx, path, &body); err != nil {
		return "", err
	}
	return body.Content, nil
}

// UploadResult is the backend's answer to a file upload.
type UploadResult struct {
	URLs []string `json:"urls"`
}

// UploadFile is one attachment to send.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// Upload posts attachments for a conversation as a multipart form. The
// backend hosts them and returns their public URLs.
func (c *Client) Upload(ctx context.Context, conversationID string, files []UploadFile) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("media", f.Name)
		if err != nil {
			return UploadResult{}, err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return UploadResult{}, err
		}
	}
	if err := mw.WriteField("chatId", conversationID); err != nil {
		return UploadResult{}, err
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/files", &buf)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return UploadResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return UploadResult{}, fmt.Errorf("upload: unexpected status %d", resp.StatusCode)
	}

	var out UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return UploadResult{}, fmt.Errorf("decoding upload response: %w", err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", path, err)
	}
	return nil
}
