package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"DisasterWatch/internal/domain"
	"DisasterWatch/internal/ports"
)

const defaultMaxItems = 10

// Fetcher retrieves and parses RSS/Atom feeds with a bounded timeout.
type Fetcher struct {
	client   *http.Client
	parser   *gofeed.Parser
	maxItems int
	logger   *slog.Logger
}

var _ ports.FeedSource = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; maxItems caps how many of the most recent
// entries one fetch yields, defaulting to 10.
func NewFetcher(client *http.Client, maxItems int, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &Fetcher{
		client:   client,
		parser:   gofeed.NewParser(),
		maxItems: maxItems,
		logger:   logger,
	}
}

// Fetch retrieves one feed and returns its most recent entries as raw items.
// An empty feed is a no-op, not an error.
func (f *Fetcher) Fetch(ctx context.Context, feed domain.FeedDescriptor) ([]domain.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "DisasterWatch/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned %s", feed.Name, resp.Status)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	if len(parsed.Items) == 0 {
		f.debug("no entries in feed", "feed", feed.Name)
		return nil, nil
	}

	entries := parsed.Items
	if len(entries) > f.maxItems {
		entries = entries[:f.maxItems]
	}

	items := make([]domain.RawItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toRawItem(entry))
	}

	f.debug("feed fetched", "feed", feed.Name, "entries", len(items))
	return items, nil
}

func toRawItem(entry *gofeed.Item) domain.RawItem {
	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}

	publishedAt := time.Now().UTC()
	if entry.PublishedParsed != nil {
		publishedAt = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		publishedAt = entry.UpdatedParsed.UTC()
	}

	return domain.RawItem{
		Title:       strings.TrimSpace(entry.Title),
		Summary:     stripHTML(summary),
		Link:        entry.Link,
		PublishedAt: publishedAt,
	}
}

// stripHTML reduces an embedded-HTML summary to its text content so that
// fingerprinting and classification see the same normalized string
// regardless of feed markup.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	return strings.TrimSpace(doc.Text())
}

func (f *Fetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
