package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/feed"
)

// AggregateTask fetches all feeds, keeps unseen articles, summarizes them and
// stores the result.
type AggregateTask struct {
	Task
	configs      FeedConfigSource
	fetcher      FeedFetcher
	deduplicator ItemDeduplicator
	summarizer   ItemSummarizer
	articleRepo  database.ArticleRepository
}

func NewAggregateTask(configs FeedConfigSource, fetcher FeedFetcher, deduplicator ItemDeduplicator, summarizer ItemSummarizer, articleRepo database.ArticleRepository) *AggregateTask {
	return &AggregateTask{
		Task:         NewTask(TaskTypeAggregate),
		configs:      configs,
		fetcher:      fetcher,
		deduplicator: deduplicator,
		summarizer:   summarizer,
		articleRepo:  articleRepo,
	}
}

func (t *AggregateTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	feedConfigs := t.configs.Enabled()
	slog.Info("Fetching feeds", "count", len(feedConfigs))

	items := t.fetcher.FetchAll(ctx, feedConfigs)
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(items) == 0 {
		slog.Info("No new articles found")
		return nil
	}

	novel, err := t.deduplicator.Run(ctx, items)
	if err != nil {
		return fmt.Errorf("failed to deduplicate articles: %w", err)
	}

	if len(novel) == 0 {
		slog.Info("No new articles found", "fetched", len(items))
		return nil
	}

	summarized := t.summarizer.Run(ctx, novel)

	// Cancellation turns every pending summary into a fallback; store nothing.
	if err := ctx.Err(); err != nil {
		return err
	}

	inserted, err := t.articleRepo.InsertMany(ctx, toArticles(summarized))
	if err != nil {
		return fmt.Errorf("failed to store articles: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"fetched", len(items),
		"new", len(novel),
		"stored", inserted)

	return nil
}

func toArticles(items []feed.Item) []database.Article {
	now := time.Now()

	articles := make([]database.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, database.Article{
			GUID:        item.GUID,
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: item.PublishedAt,
			Source:      item.Source,
			Content:     item.Content,
			Summary:     item.Summary,
			CreatedAt:   now,
		})
	}

	return articles
}
