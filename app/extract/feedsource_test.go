package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tickerwatch/disclosure-comb/app/disclosure"
)

const disclosureFeedXML = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Corp Disclosures</title>
    <link>https://ir.example.com</link>
    <description>Company announcements</description>
    <item>
      <title>  Q2 results published </title>
      <link>https://ir.example.com/news/q2-results</link>
      <pubDate>Mon, 05 Aug 2024 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Dividend declaration</title>
      <link>https://ir.example.com/news/dividend</link>
    </item>
  </channel>
</rss>`

func TestFeedSourceExtractorRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(disclosureFeedXML))
	}))
	defer server.Close()

	extractor := NewFeedSourceExtractor(http.DefaultClient, server.URL, testUserAgent, 5*time.Second)

	records, err := extractor.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, disclosure.SourceWebpage, first.Source)
	require.Equal(t, disclosure.DescriptionWebpage, first.Description)
	require.Equal(t, "Q2 results published", first.Title, "titles are trimmed")
	require.Equal(t, "2024-08-05", first.Date)
	require.Equal(t, "https://ir.example.com/news/q2-results", first.Link)

	second := records[1]
	require.Empty(t, second.Date, "items without a publication date carry no date and get dropped downstream")
}

func TestFeedSourceExtractorRunHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	extractor := NewFeedSourceExtractor(http.DefaultClient, server.URL, testUserAgent, 5*time.Second)

	_, err := extractor.Run(context.Background())
	require.Error(t, err)
}

func TestFeedSourceExtractorRunMalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	extractor := NewFeedSourceExtractor(http.DefaultClient, server.URL, testUserAgent, 5*time.Second)

	_, err := extractor.Run(context.Background())
	require.Error(t, err)
}

func TestCollectRecoversFailedSources(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(disclosureFeedXML))
	}))
	defer working.Close()

	results := Collect(context.Background(),
		NewWebpageExtractor(http.DefaultClient, broken.URL, testUserAgent, 5*time.Second),
		NewFeedSourceExtractor(http.DefaultClient, working.URL, testUserAgent, 5*time.Second),
	)

	require.Len(t, results, 2)
	require.False(t, results[0].OK())
	require.True(t, results[1].OK())
	require.Len(t, results[1].Records, 2)
}
