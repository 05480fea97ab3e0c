package feed

import (
	"regexp"
	"time"
)

type Item struct {
	GUID        string // Falls back to Link when the source has no guid
	Title       string
	Link        string
	Source      string // Channel title, or the catalogue name when the feed has none
	Content     string // Plain text snippet, HTML stripped
	PublishedAt time.Time
	Categories  []string

	Summary string // Set by the Summarizer, empty beyond its cap
}

// Config describes one source of the feed catalogue.
type Config struct {
	Name      string         `yaml:"-"` // Derived from filename (without .yml extension)
	URL       string         `yaml:"url"`
	Settings  ConfigSettings `yaml:"settings"`
	Relevance *Relevance     `yaml:"relevance"`
}

type ConfigSettings struct {
	Enabled        bool `yaml:"enabled"`
	Timeout        int  `yaml:"timeout"`         // seconds
	ExtractContent bool `yaml:"extract_content"` // fetch the article page when the item has no content
}

// Relevance keeps a source's items on topic for the digest. An item must
// mention one of Keywords (when any are given) and none of Exclude. Terms
// match whole words, case-insensitively, in the title, categories and content.
type Relevance struct {
	Keywords []string `yaml:"keywords"`
	Exclude  []string `yaml:"exclude"`

	keywords *regexp.Regexp
	exclude  *regexp.Regexp
}

// GetTimeout returns the fetch timeout, falling back to 30 seconds.
func (s ConfigSettings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}
