package feed

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses a feed document. Each item's Source is the channel title.
func (p *Parser) Run(data []byte) ([]Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, p.normalizeItem(item, collapseWhitespace(feed.Title)))
	}

	return items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item, source string) Item {
	normalized := Item{
		GUID:    cmp.Or(item.GUID, item.Link),
		Title:   collapseWhitespace(item.Title),
		Link:    item.Link,
		Source:  source,
		Content: TextFromHTML(cmp.Or(item.Content, item.Description)),
	}

	// Atom entries often carry only <updated>
	if item.PublishedParsed != nil {
		normalized.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = *item.UpdatedParsed
	}

	if item.Categories != nil {
		normalized.Categories = item.Categories
	}

	return normalized
}
