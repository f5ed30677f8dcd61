package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tickerwatch/disclosure-comb/app/disclosure"
)

// FeedSourceExtractor consumes an RSS/Atom feed published alongside the
// disclosure webpage. Items carry the same provenance label as scraped
// records since both describe the disclosure & news service.
type FeedSourceExtractor struct {
	httpClient   *http.Client
	feedURL      string
	userAgent    string
	timeout      time.Duration
	gofeedParser *gofeed.Parser
}

func NewFeedSourceExtractor(httpClient *http.Client, feedURL string, userAgent string, timeout time.Duration) *FeedSourceExtractor {
	return &FeedSourceExtractor{
		httpClient:   httpClient,
		feedURL:      feedURL,
		userAgent:    userAgent,
		timeout:      timeout,
		gofeedParser: gofeed.NewParser(),
	}
}

func (e *FeedSourceExtractor) Name() string {
	return "feed"
}

func (e *FeedSourceExtractor) Run(ctx context.Context) ([]disclosure.Record, error) {
	data, err := e.fetchFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed, err := e.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	records := make([]disclosure.Record, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		records = append(records, e.normalizeItem(item))
	}

	return records, nil
}

func (e *FeedSourceExtractor) normalizeItem(item *gofeed.Item) disclosure.Record {
	record := disclosure.Record{
		Source:      disclosure.SourceWebpage,
		Title:       strings.TrimSpace(item.Title),
		Description: disclosure.DescriptionWebpage,
		Link:        item.Link,
	}

	if item.PublishedParsed != nil {
		record.Date = item.PublishedParsed.Format("2006-01-02")
	} else {
		record.Date = disclosure.NormalizeDate(item.Published)
	}

	return record
}

func (e *FeedSourceExtractor) fetchFeed(ctx context.Context) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", e.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
