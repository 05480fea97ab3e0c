package digest

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/feed"
)

const (
	// UnsubscribePlaceholder is left in the rendered digest and replaced per recipient.
	UnsubscribePlaceholder = "{{unsubscribe_url}}"

	DateLayout = "January 2, 2006"
	TimeLayout = "3:04 PM"
)

//go:embed templates/digest.html
var templateFS embed.FS

type articleView struct {
	Title   string
	Link    string
	Source  string
	Time    string
	Summary string
}

type digestView struct {
	Date            string
	Articles        []articleView
	UnsubscribeLink template.HTML
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/digest.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse digest template: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Run renders the digest for date. The output is the same for every
// recipient and still contains UnsubscribePlaceholder.
func (r *Renderer) Run(date time.Time, articles []database.Article) (string, error) {
	view := digestView{
		Date:     date.Format(DateLayout),
		Articles: make([]articleView, 0, len(articles)),
		// html/template would percent-encode the placeholder braces inside href
		UnsubscribeLink: template.HTML(`<a href="` + UnsubscribePlaceholder + `" style="color: #667eea; text-decoration: none;">Unsubscribe</a>`),
	}

	for _, article := range articles {
		summary := article.Summary
		if summary == "" {
			summary = feed.Excerpt(article.Content)
		}

		view.Articles = append(view.Articles, articleView{
			Title:   article.Title,
			Link:    article.Link,
			Source:  article.Source,
			Time:    article.PublishedAt.In(time.Local).Format(TimeLayout),
			Summary: summary,
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}

	return buf.String(), nil
}

func Subject(date time.Time) string {
	return "Daily AI News - " + date.Format(DateLayout)
}

func UnsubscribeURL(baseURL, subscriberID string) string {
	return strings.TrimRight(baseURL, "/") + "/unsubscribe?id=" + url.QueryEscape(subscriberID)
}

// Personalize swaps the placeholder for the recipient's unsubscribe URL.
func Personalize(rendered, unsubscribeURL string) string {
	return strings.ReplaceAll(rendered, UnsubscribePlaceholder, html.EscapeString(unsubscribeURL))
}
