package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	PromptContentLength = 1000
	promptTemplate      = "Summarize this AI news article in 2-3 sentences. Be concise and focus on the key insight:\n\nTitle: %s\n\nContent: %s"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer asks the generator for a summary of the first limit items, one
// at a time. Items past the limit are returned without a summary.
type Summarizer struct {
	generator Generator
	limit     int
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewSummarizer builds a summarizer issuing at most rpm requests per minute.
// An rpm of zero disables throttling.
func NewSummarizer(generator Generator, limit int, rpm int, timeout time.Duration) *Summarizer {
	var limiter *rate.Limiter
	if rpm > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}

	return &Summarizer{
		generator: generator,
		limit:     limit,
		timeout:   timeout,
		limiter:   limiter,
	}
}

func (s *Summarizer) Run(ctx context.Context, items []Item) []Item {
	result := make([]Item, len(items))
	copy(result, items)

	generated := 0
	fallbacks := 0

	for i := range result {
		if i >= s.limit {
			break
		}

		summary, err := s.summarize(ctx, result[i])
		if err != nil {
			slog.Warn("Failed to summarize article, using excerpt", "guid", result[i].GUID, "error", err)
			result[i].Summary = FallbackSummary(result[i])
			fallbacks++
			continue
		}

		result[i].Summary = summary
		generated++
	}

	slog.Debug("Articles summarized", "generated", generated, "fallbacks", fallbacks, "skipped", len(result)-generated-fallbacks)

	return result
}

func (s *Summarizer) summarize(ctx context.Context, item Item) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.generator.Generate(callCtx, Prompt(item))
	if err != nil {
		return "", err
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("empty summary")
	}

	return summary, nil
}

func Prompt(item Item) string {
	return fmt.Sprintf(promptTemplate, item.Title, Truncate(item.Content, PromptContentLength))
}

// FallbackSummary is the excerpt stored when generation fails.
func FallbackSummary(item Item) string {
	if item.Content == "" {
		return item.Title
	}
	return Excerpt(item.Content)
}
