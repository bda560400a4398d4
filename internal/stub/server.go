// Package stub is a self-contained development backend for the widget: the
// REST endpoints the engine fetches from, the realtime channel it connects
// to, and canned conversation behavior, so widgetd can run end to end with
// no production service.
package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/solvyn/widgetcore/internal/config"
	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
)

// Server is the stub backend.
type Server struct {
	cfg     config.StubConfig
	log     *logging.Logger
	metrics *metrics

	mu       sync.Mutex
	convs    map[string]*conversation
	articles []domain.Article
	bodies   map[string]string
}

// conversation is the stub's stored chat.
type conversation struct {
	ID        string        `json:"_id"`
	Name      string        `json:"name"`
	Email     string        `json:"-"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Messages  []wireMessage `json:"messages"`
}

type wireMessage struct {
	Sender    string   `json:"sender"`
	Text      string   `json:"text"`
	Timestamp string   `json:"timestamp"`
	Options   []string `json:"options,omitempty"`
	FileURL   string   `json:"fileUrl,omitempty"`
}

// NewServer creates a stub backend seeded with a few help articles.
func NewServer(cfg config.StubConfig, log *logging.Logger) *Server {
	s := &Server{
		cfg:   cfg,
		log:   log.Sub("stub"),
		convs: make(map[string]*conversation),
		articles: []domain.Article{
			{ID: "getting-started", Title: "Getting started", Description: "Set up your account in five minutes"},
			{ID: "billing", Title: "Billing and invoices", Description: "Where to find and download invoices"},
			{ID: "refunds", Title: "Refund policy", Description: "When and how refunds are issued"},
		},
		bodies: map[string]string{
			"getting-started": "# Getting started\n\nCreate an account, verify your email, and you're in.",
			"billing":         "# Billing\n\nInvoices live under Settings → Billing.",
			"refunds":         "# Refunds\n\nRefunds are issued within 30 days of purchase.",
		},
	}
	if cfg.Metrics {
		s.metrics = newMetrics(prometheus.DefaultRegisterer)
	}
	return s
}

// Router builds the HTTP surface.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/health", s.handleHealth)
	r.Get("/api/chats/{chatID}", s.handleConversation)
	r.Get("/api/chats/{tenant}/{email}", s.handleConversations)
	r.Post("/api/files", s.handleUpload)
	r.Get("/api/websites/faqs/{tenant}", s.handleArticles)
	r.Get("/api/websites/faqs/{tenant}/{articleID}", s.handleArticleBody)
	r.Get("/ws", s.handleWS)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.handler())
	}
	return r
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var handler http.Handler = s.Router()
	if s.metrics != nil {
		handler = s.metrics.instrument(handler)
	}

	srv := &http.Server{Addr: s.cfg.Addr, Handler: handler}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.log.Info().Str("addr", s.cfg.Addr).Msg("stub backend listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "widgetstub"})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	s.mu.Lock()
	conv, ok := s.convs[chatID]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chat not found"})
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	s.mu.Lock()
	out := make([]*conversation, 0)
	for _, c := range s.convs {
		if c.Email == email {
			out = append(out, c)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad multipart form"})
		return
	}
	chatID := r.FormValue("chatId")

	var urls []string
	for _, f := range r.MultipartForm.File["media"] {
		// Nothing is stored; the URL just has to look real to the widget.
		urls = append(urls, "https://files.stub.invalid/"+chatID+"/"+f.Filename)
	}
	s.log.Debug().Str("chatId", chatID).Int("files", len(urls)).Msg("upload accepted")
	writeJSON(w, http.StatusOK, map[string]any{"urls": urls})
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.articles)
}

func (s *Server) handleArticleBody(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "articleID")
	body, ok := s.bodies[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": body})
}

// createConversation stores a fresh conversation for a visitor.
func (s *Server) createConversation(email string) *conversation {
	now := time.Now().UTC()
	conv := &conversation{
		ID:        uuid.New().String(),
		Name:      "Conversation with " + email,
		Email:     email,
		Status:    "open",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.convs[conv.ID] = conv
	s.mu.Unlock()
	return conv
}

// appendMessage stores a message on a conversation.
func (s *Server) appendMessage(chatID string, msg wireMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[chatID]
	if !ok {
		return
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = time.Now().UTC()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
