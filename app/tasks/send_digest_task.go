package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/digest"
)

// SendDigestTask mails today's articles to every active subscriber.
type SendDigestTask struct {
	Task
	articleRepo    database.ArticleRepository
	subscriberRepo database.SubscriberRepository
	digestLogRepo  database.DigestLogRepository
	renderer       DigestRenderer
	batcher        DigestBatcher
	limit          int
	now            func() time.Time
}

func NewSendDigestTask(articleRepo database.ArticleRepository, subscriberRepo database.SubscriberRepository, digestLogRepo database.DigestLogRepository, renderer DigestRenderer, batcher DigestBatcher, limit int) *SendDigestTask {
	return &SendDigestTask{
		Task:           NewTask(TaskTypeSendDigest),
		articleRepo:    articleRepo,
		subscriberRepo: subscriberRepo,
		digestLogRepo:  digestLogRepo,
		renderer:       renderer,
		batcher:        batcher,
		limit:          limit,
		now:            time.Now,
	}
}

func (t *SendDigestTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	now := t.now().In(time.Local)

	articles, err := t.articleRepo.GetCreatedSince(ctx, StartOfDay(now), t.limit)
	if err != nil {
		return fmt.Errorf("failed to get today's articles: %w", err)
	}

	if len(articles) == 0 {
		slog.Info("No articles to send today")
		return nil
	}

	subscribers, err := t.subscriberRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active subscribers: %w", err)
	}

	if len(subscribers) == 0 {
		slog.Info("No active subscribers")
		return nil
	}

	slog.Info("Sending digest", "articles", len(articles), "subscribers", len(subscribers))

	rendered, err := t.renderer.Run(now, articles)
	if err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	result := t.batcher.Run(ctx, digest.Subject(now), rendered, subscribers)

	// Emails already went out; record them even if the run was interrupted.
	err = t.digestLogRepo.Insert(context.WithoutCancel(ctx), database.DigestLog{
		SentAt:          t.now(),
		ArticleCount:    len(articles),
		SubscriberCount: result.Sent,
	})
	if err != nil {
		slog.Error("Failed to record digest log", "error", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"articles", len(articles),
		"batches", result.Batches,
		"failed_batches", result.FailedBatches,
		"sent", result.Sent)

	return ctx.Err()
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.In(time.Local).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}
