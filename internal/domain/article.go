package domain

import "strings"

// Article is a help-article summary from the article list endpoint.
type Article struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Matches reports whether the article matches a case-insensitive search
// query over its title and description.
func (a Article) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Description), q)
}

// FilterArticles returns the articles matching the query. An empty query
// matches everything.
func FilterArticles(articles []Article, query string) []Article {
	if query == "" {
		return articles
	}
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.Matches(query) {
			out = append(out, a)
		}
	}
	return out
}
