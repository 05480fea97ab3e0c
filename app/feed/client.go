package feed

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"
)

// Window is how far back an item's publish time may lie to be kept.
// Items published exactly Window ago are dropped.
const Window = 24 * time.Hour

type Client struct {
	httpClient       *http.Client
	parser           *Parser
	contentExtractor *ContentExtractor
	userAgent        string
	now              func() time.Time
}

func NewClient(httpClient *http.Client, parser *Parser, contentExtractor *ContentExtractor, userAgent string) *Client {
	return &Client{
		httpClient:       httpClient,
		parser:           parser,
		contentExtractor: contentExtractor,
		userAgent:        userAgent,
		now:              time.Now,
	}
}

// FetchAll fetches every enabled feed concurrently. A failing feed is logged
// and contributes no items. Results are merged in feed name order.
func (c *Client) FetchAll(ctx context.Context, feedConfigs map[string]*Config) []Item {
	names := make([]string, 0, len(feedConfigs))
	for name, feedConfig := range feedConfigs {
		if !feedConfig.Settings.Enabled {
			slog.Debug("Feed disabled, skipping", "feed", name)
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	results := make([][]Item, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()

			items, err := c.Fetch(ctx, feedConfigs[name])
			if err != nil {
				slog.Error("Failed to fetch feed", "feed", name, "error", err)
				return
			}

			slog.Debug("Feed fetched", "feed", name, "items", len(items))
			results[i] = items
		}()
	}
	wg.Wait()

	var merged []Item
	for _, items := range results {
		merged = append(merged, items...)
	}

	return merged
}

// Fetch returns the items of one feed published within Window of now that
// pass the source's relevance rule.
func (c *Client) Fetch(ctx context.Context, feedConfig *Config) ([]Item, error) {
	timeout := feedConfig.Settings.GetTimeout()

	data, err := c.get(ctx, feedConfig.URL, timeout, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	items, err := c.parser.Run(data)
	if err != nil {
		return nil, err
	}

	cutoff := c.now().Add(-Window)

	recent := make([]Item, 0, len(items))
	for _, item := range items {
		if item.GUID == "" {
			slog.Warn("Skipping item without guid or link", "feed", feedConfig.Name, "title", item.Title)
			continue
		}
		if !item.PublishedAt.After(cutoff) {
			continue
		}
		item.Source = cmp.Or(item.Source, feedConfig.Name)
		recent = append(recent, item)
	}

	if feedConfig.Settings.ExtractContent {
		for i := range recent {
			if recent[i].Content != "" || recent[i].Link == "" {
				continue
			}

			content, err := c.extractContent(ctx, recent[i].Link, timeout)
			if err != nil {
				slog.Warn("Failed to extract content for item", "feed", feedConfig.Name, "url", recent[i].Link, "error", err)
				continue
			}
			recent[i].Content = content
		}
	}

	accepted := make([]Item, 0, len(recent))
	for _, item := range recent {
		if ok, reason := feedConfig.Relevance.Match(item); !ok {
			slog.Debug("Item not relevant", "feed", feedConfig.Name, "guid", item.GUID, "reason", reason)
			continue
		}
		accepted = append(accepted, item)
	}

	return accepted, nil
}

func (c *Client) extractContent(ctx context.Context, link string, timeout time.Duration) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid link: %w", err)
	}

	data, err := c.get(ctx, link, timeout, "text/html")
	if err != nil {
		return "", fmt.Errorf("failed to fetch article content: %w", err)
	}

	return c.contentExtractor.Run(data, pageURL)
}

func (c *Client) get(ctx context.Context, rawURL string, timeout time.Duration, wantContentType string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if wantContentType != "" {
		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(contentType), wantContentType) {
			return nil, fmt.Errorf("unexpected content type: %s", contentType)
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
