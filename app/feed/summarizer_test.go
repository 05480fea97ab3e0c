package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mockGenerator struct {
	prompts   []string
	responses map[string]string
	errs      map[string]error
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	for title, err := range m.errs {
		if strings.Contains(prompt, "Title: "+title+"\n") {
			return "", err
		}
	}
	for title, response := range m.responses {
		if strings.Contains(prompt, "Title: "+title+"\n") {
			return response, nil
		}
	}
	return "Generated summary.", nil
}

func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			GUID:    string(rune('a' + i)),
			Title:   "Article " + string(rune('A'+i)),
			Content: strings.Repeat("x", 300),
		}
	}
	return items
}

func TestSummarizerCapsAtLimit(t *testing.T) {
	generator := &mockGenerator{}
	summarizer := NewSummarizer(generator, 10, 0, time.Second)

	result := summarizer.Run(context.Background(), makeItems(12))

	if len(result) != 12 {
		t.Fatalf("Expected 12 items, got %d", len(result))
	}
	if len(generator.prompts) != 10 {
		t.Errorf("Expected 10 generation calls, got %d", len(generator.prompts))
	}
	for i := 0; i < 10; i++ {
		if result[i].Summary != "Generated summary." {
			t.Errorf("Item %d: expected generated summary, got %q", i, result[i].Summary)
		}
	}
	for i := 10; i < 12; i++ {
		if result[i].Summary != "" {
			t.Errorf("Item %d: expected no summary beyond the limit, got %q", i, result[i].Summary)
		}
	}
}

func TestSummarizerFallbackOnFailure(t *testing.T) {
	generator := &mockGenerator{
		errs:      map[string]error{"Article C": errors.New("quota exceeded")},
		responses: map[string]string{"Article B": "   "},
	}
	summarizer := NewSummarizer(generator, 10, 0, time.Second)

	items := makeItems(5)
	result := summarizer.Run(context.Background(), items)

	expected := strings.Repeat("x", 200) + "..."
	if result[2].Summary != expected {
		t.Errorf("Expected fallback excerpt for failed item, got %q", result[2].Summary)
	}
	if result[1].Summary != expected {
		t.Errorf("Expected fallback excerpt for empty response, got %q", result[1].Summary)
	}
	for _, i := range []int{0, 3, 4} {
		if result[i].Summary != "Generated summary." {
			t.Errorf("Item %d: expected generated summary, got %q", i, result[i].Summary)
		}
	}
	for i := range result {
		if result[i].GUID != items[i].GUID {
			t.Errorf("Expected input order to be preserved at %d", i)
		}
	}
	if items[0].Summary != "" {
		t.Errorf("Input items should not be modified")
	}
}

func TestSummarizerFallbackWithoutContent(t *testing.T) {
	generator := &mockGenerator{errs: map[string]error{"Bare": errors.New("timeout")}}
	summarizer := NewSummarizer(generator, 10, 0, time.Second)

	result := summarizer.Run(context.Background(), []Item{{GUID: "bare", Title: "Bare"}})

	if result[0].Summary != "Bare" {
		t.Errorf("Expected title as fallback, got %q", result[0].Summary)
	}
}

func TestSummarizerPrompt(t *testing.T) {
	item := Item{Title: "Big news", Content: strings.Repeat("é", 1500)}

	prompt := Prompt(item)

	prefix := "Summarize this AI news article in 2-3 sentences. Be concise and focus on the key insight:\n\nTitle: Big news\n\nContent: "
	if !strings.HasPrefix(prompt, prefix) {
		t.Errorf("Unexpected prompt prefix: %q", prompt[:80])
	}
	if got := len([]rune(strings.TrimPrefix(prompt, prefix))); got != 1000 {
		t.Errorf("Expected 1000 characters of content, got %d", got)
	}
}

func TestSummarizerCancelledContext(t *testing.T) {
	generator := &mockGenerator{}
	summarizer := NewSummarizer(generator, 10, 1, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := summarizer.Run(ctx, makeItems(2))

	for i, item := range result {
		if item.Summary != FallbackSummary(item) {
			t.Errorf("Item %d: expected fallback summary after cancellation, got %q", i, item.Summary)
		}
	}
	if len(generator.prompts) != 0 {
		t.Errorf("Expected no generation calls after cancellation, got %d", len(generator.prompts))
	}
}

type serialGenerator struct {
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	mu        sync.Mutex
	titles    []string
}

func (g *serialGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	current := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)

	if current > g.maxFlight.Load() {
		g.maxFlight.Store(current)
	}

	_, rest, _ := strings.Cut(prompt, "Title: ")
	title, _, _ := strings.Cut(rest, "\n")

	g.mu.Lock()
	g.titles = append(g.titles, title)
	g.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	return "Summary.", nil
}

func TestSummarizerRunsOneCallAtATime(t *testing.T) {
	generator := &serialGenerator{}
	summarizer := NewSummarizer(generator, 5, 0, time.Second)

	items := makeItems(5)
	summarizer.Run(context.Background(), items)

	if got := generator.maxFlight.Load(); got != 1 {
		t.Errorf("Expected at most 1 generation call in flight, got %d", got)
	}

	if len(generator.titles) != len(items) {
		t.Fatalf("Expected %d calls, got %d", len(items), len(generator.titles))
	}
	for i, title := range generator.titles {
		if title != items[i].Title {
			t.Errorf("Call %d: expected %q, got %q", i, items[i].Title, title)
		}
	}
}
