package widget

import (
	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/view"
)

// LogRenderer is the headless Renderer: every presentation effect becomes a
// structured log line. It backs widgetd runs, where no UI is attached.
type LogRenderer struct {
	log *logging.Logger
}

// NewLogRenderer creates a renderer writing to the given logger.
func NewLogRenderer(log *logging.Logger) *LogRenderer {
	return &LogRenderer{log: log.Sub("render")}
}

func (r *LogRenderer) ViewsHidden(dir domain.Direction) {
	r.log.Debug().Str("dir", string(dir)).Msg("views hidden")
}

func (r *LogRenderer) ViewShown(v domain.View, dir domain.Direction) {
	r.log.Info().Str("view", string(v)).Str("dir", string(dir)).Msg("view shown")
}

func (r *LogRenderer) ViewSettled(v domain.View) {
	r.log.Debug().Str("view", string(v)).Msg("view settled")
}

func (r *LogRenderer) FooterShown(v domain.View) {
	r.log.Debug().Str("view", string(v)).Msg("footer shown")
}

func (r *LogRenderer) HeaderChanged(h view.Header) {
	r.log.Debug().Str("title", h.Title).Msg("header changed")
}

func (r *LogRenderer) TabChanged(tab domain.Tab) {
	r.log.Info().Str("tab", string(tab)).Msg("tab changed")
}

func (r *LogRenderer) ConfigApplied(cfg domain.Config) {
	r.log.Info().Str("tenant", cfg.TenantCode).Str("theme", cfg.Theme).Msg("config applied")
}

func (r *LogRenderer) ExpandedChanged(expanded bool) {
	r.log.Info().Bool("expanded", expanded).Msg("expansion changed")
}

func (r *LogRenderer) ConversationsListed(convs []domain.Conversation) {
	r.log.Info().Int("count", len(convs)).Msg("conversations listed")
}

func (r *LogRenderer) TranscriptLoaded(msgs []domain.Message) {
	r.log.Info().Int("count", len(msgs)).Msg("transcript loaded")
}

func (r *LogRenderer) MessageArrived(m domain.Message) {
	r.log.Info().Str("sender", m.Sender.Wire()).Str("text", m.Text).Msg("message")
}

func (r *LogRenderer) TypingChanged(on bool) {
	r.log.Debug().Bool("typing", on).Msg("typing indicator")
}

func (r *LogRenderer) InputVisibilityChanged(visible bool) {
	r.log.Info().Bool("visible", visible).Msg("input visibility")
}

func (r *LogRenderer) ArticlesListed(articles []domain.Article) {
	r.log.Info().Int("count", len(articles)).Msg("articles listed")
}

func (r *LogRenderer) ArticleShown(article domain.Article, body string) {
	r.log.Info().Str("articleId", article.ID).Int("bodyBytes", len(body)).Msg("article shown")
}

func (r *LogRenderer) Notice(text string) {
	r.log.Warn().Str("text", text).Msg("notice")
}

func (r *LogRenderer) NavigateHost(url string, newWindow bool) {
	r.log.Info().Str("url", url).Bool("newWindow", newWindow).Msg("host navigation")
}
