package digest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/mailer"
)

type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type Result struct {
	Batches       int
	Sent          int
	FailedBatches int
}

// Batcher delivers a rendered digest to subscribers in fixed-size batches.
// Sends within a batch run concurrently and a batch settles before the next
// one starts.
type Batcher struct {
	sender    Sender
	batchSize int
	from      string
	baseURL   string
}

func NewBatcher(sender Sender, batchSize int, from, baseURL string) *Batcher {
	return &Batcher{
		sender:    sender,
		batchSize: batchSize,
		from:      from,
		baseURL:   baseURL,
	}
}

func (b *Batcher) Run(ctx context.Context, subject, rendered string, subscribers []database.Subscriber) Result {
	var result Result

	total := (len(subscribers) + b.batchSize - 1) / b.batchSize

	for start := 0; start < len(subscribers); start += b.batchSize {
		if ctx.Err() != nil {
			slog.Warn("Delivery interrupted", "batches_left", total-result.Batches, "error", ctx.Err())
			break
		}

		end := min(start+b.batchSize, len(subscribers))
		batch := subscribers[start:end]
		result.Batches++

		failed := b.sendBatch(ctx, subject, rendered, batch, result.Batches)
		if failed > 0 {
			result.FailedBatches++
			slog.Error("Batch failed", "batch", result.Batches, "of", total, "failed", failed, "size", len(batch))
			continue
		}

		result.Sent += len(batch)
		slog.Info("Batch sent", "batch", result.Batches, "of", total, "sent", result.Sent, "subscribers", len(subscribers))
	}

	return result
}

func (b *Batcher) sendBatch(ctx context.Context, subject, rendered string, batch []database.Subscriber, batchNum int) int {
	errs := make([]error, len(batch))

	var wg sync.WaitGroup
	for i, subscriber := range batch {
		wg.Add(1)
		go func() {
			defer wg.Done()

			errs[i] = b.sender.Send(ctx, mailer.Message{
				From:    b.from,
				To:      subscriber.Email,
				Subject: subject,
				HTML:    Personalize(rendered, UnsubscribeURL(b.baseURL, subscriber.ID)),
			})
		}()
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			slog.Error("Failed to send digest", "batch", batchNum, "subscriber", batch[i].ID, "error", err)
		}
	}

	return failed
}
