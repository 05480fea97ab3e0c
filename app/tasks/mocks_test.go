package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/feed"
)

type mockConfigSource struct {
	configs map[string]*feed.Config
}

func (m *mockConfigSource) Enabled() map[string]*feed.Config {
	return m.configs
}

type mockFetcher struct {
	items []feed.Item
	calls int
}

func (m *mockFetcher) FetchAll(ctx context.Context, feedConfigs map[string]*feed.Config) []feed.Item {
	m.calls++
	return m.items
}

type mockDeduplicator struct {
	known map[string]bool
	err   error
	calls int
}

func (m *mockDeduplicator) Run(ctx context.Context, items []feed.Item) ([]feed.Item, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var novel []feed.Item
	for _, item := range items {
		if !m.known[item.GUID] {
			novel = append(novel, item)
		}
	}
	return novel, nil
}

type mockSummarizer struct {
	calls int
}

func (m *mockSummarizer) Run(ctx context.Context, items []feed.Item) []feed.Item {
	m.calls++
	result := make([]feed.Item, len(items))
	copy(result, items)
	for i := range result {
		result[i].Summary = "Summary of " + result[i].Title
	}
	return result
}

type stubGenerator struct {
	summary string
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.summary, nil
}

type mockArticleRepo struct {
	known     map[string]bool
	inserted  []database.Article
	today     []database.Article
	insertErr error
	readErr   error
	since     time.Time
	limit     int
}

func (m *mockArticleRepo) BatchExists(ctx context.Context, guids []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for _, guid := range guids {
		if m.known[guid] {
			existing[guid] = true
		}
	}
	return existing, nil
}

func (m *mockArticleRepo) InsertMany(ctx context.Context, articles []database.Article) (int, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.inserted = append(m.inserted, articles...)
	return len(articles), nil
}

func (m *mockArticleRepo) GetCreatedSince(ctx context.Context, since time.Time, limit int) ([]database.Article, error) {
	m.since = since
	m.limit = limit
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.today, nil
}

func (m *mockArticleRepo) GetArticleCount(ctx context.Context) (int, error) {
	return len(m.inserted), nil
}

type mockSubscriberRepo struct {
	active []database.Subscriber
	err    error
}

func (m *mockSubscriberRepo) Create(ctx context.Context, email string) (string, error) {
	return "", nil
}

func (m *mockSubscriberRepo) FindByEmail(ctx context.Context, email string) (*database.Subscriber, error) {
	return nil, nil
}

func (m *mockSubscriberRepo) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	return false, nil
}

func (m *mockSubscriberRepo) ListActive(ctx context.Context) ([]database.Subscriber, error) {
	return m.active, m.err
}

func (m *mockSubscriberRepo) GetActiveCount(ctx context.Context) (int, error) {
	return len(m.active), m.err
}

type mockDigestLogRepo struct {
	logs []database.DigestLog
	err  error
}

func (m *mockDigestLogRepo) Insert(ctx context.Context, log database.DigestLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockDigestLogRepo) GetLatest(ctx context.Context) (*database.DigestLog, error) {
	if len(m.logs) == 0 {
		return nil, nil
	}
	return &m.logs[len(m.logs)-1], nil
}

type mockRenderer struct {
	calls int
}

func (m *mockRenderer) Run(date time.Time, articles []database.Article) (string, error) {
	m.calls++
	return "<html>{{unsubscribe_url}}</html>", nil
}

type mockBatcher struct {
	result      digest.Result
	calls       int
	subject     string
	subscribers []database.Subscriber
}

func (m *mockBatcher) Run(ctx context.Context, subject, rendered string, subscribers []database.Subscriber) digest.Result {
	m.calls++
	m.subject = subject
	m.subscribers = subscribers
	return m.result
}
