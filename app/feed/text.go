package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	ExcerptLength = 200
	Ellipsis      = "..."
)

// TextFromHTML strips markup and collapses whitespace.
func TextFromHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(s)
	}

	doc.Find("script, style, noscript").Remove()

	return collapseWhitespace(doc.Text())
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Excerpt is the digest fallback for articles without a summary.
func Excerpt(content string) string {
	return Truncate(content, ExcerptLength) + Ellipsis
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
