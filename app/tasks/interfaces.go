package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/feed"
)

// Collaborators of the pipeline tasks. The concrete types live in the feed
// and digest packages.

type FeedConfigSource interface {
	Enabled() map[string]*feed.Config
}

type FeedFetcher interface {
	FetchAll(ctx context.Context, feedConfigs map[string]*feed.Config) []feed.Item
}

type ItemDeduplicator interface {
	Run(ctx context.Context, items []feed.Item) ([]feed.Item, error)
}

type ItemSummarizer interface {
	Run(ctx context.Context, items []feed.Item) []feed.Item
}

type DigestRenderer interface {
	Run(date time.Time, articles []database.Article) (string, error)
}

type DigestBatcher interface {
	Run(ctx context.Context, subject, rendered string, subscribers []database.Subscriber) digest.Result
}

var (
	_ FeedConfigSource = (*feed.Catalogue)(nil)
	_ FeedFetcher      = (*feed.Client)(nil)
	_ ItemDeduplicator = (*feed.Deduplicator)(nil)
	_ ItemSummarizer   = (*feed.Summarizer)(nil)
	_ DigestRenderer   = (*digest.Renderer)(nil)
	_ DigestBatcher    = (*digest.Batcher)(nil)
)
