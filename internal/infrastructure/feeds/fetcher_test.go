package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DisasterWatch/internal/domain"
)

func rssDocument(itemCount int) string {
	items := ""
	for i := 0; i < itemCount; i++ {
		items += fmt.Sprintf(`
		<item>
			<title> Item %d </title>
			<description><![CDATA[<p>Flooding reported in <b>sector %d</b>.</p>]]></description>
			<link>https://example.org/items/%d</link>
			<pubDate>Mon, 10 Aug 2026 12:00:00 GMT</pubDate>
		</item>`, i, i, i)
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
	<rss version="2.0"><channel><title>Test Feed</title>` + items + `</channel></rss>`
}

func testFeed(url string) domain.FeedDescriptor {
	return domain.FeedDescriptor{Name: "Test Feed", URL: url, Category: "news"}
}

func TestFetchParsesItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DisasterWatch/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(rssDocument(2)))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), 10, nil)
	items, err := fetcher.Fetch(context.Background(), testFeed(server.URL))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Item 0", items[0].Title)
	assert.Equal(t, "Flooding reported in sector 0.", items[0].Summary, "summary HTML must be stripped")
	assert.Equal(t, "https://example.org/items/0", items[0].Link)
	assert.Equal(t, 2026, items[0].PublishedAt.Year())
}

func TestFetchCapsEntries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssDocument(25)))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), 10, nil)
	items, err := fetcher.Fetch(context.Background(), testFeed(server.URL))
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestFetchEmptyFeedIsNoOp(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssDocument(0)))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), 10, nil)
	items, err := fetcher.Fetch(context.Background(), testFeed(server.URL))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), 10, nil)
	_, err := fetcher.Fetch(context.Background(), testFeed(server.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchUnparseableContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), 10, nil)
	_, err := fetcher.Fetch(context.Background(), testFeed(server.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse feed")
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain text", stripHTML("  plain text  "))
	assert.Equal(t, "bold and linked", stripHTML("<p><b>bold</b> and <a href='#'>linked</a></p>"))
}
