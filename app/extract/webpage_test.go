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

const disclosurePageHTML = `<!DOCTYPE html>
<html>
<head><title>Example Corp — Disclosures</title></head>
<body>
  <nav><a href="/news">News home</a></nav>
  <main>
    <table>
      <tr>
        <td><time datetime="2024-03-02T10:00:00Z">Mar 2</time></td>
        <td><a href="/filings/annual-report-2023">Annual Report 2023</a></td>
      </tr>
      <tr>
        <td><time>March 1, 2024</time></td>
        <td><a href="/news/ceo-update">CEO update</a></td>
      </tr>
      <tr>
        <td>Published February 5, 2024</td>
        <td><a href="https://other.example.net/disclosure/material-event">Material event notice</a></td>
      </tr>
      <tr>
        <td></td>
        <td><a href="/filings/undated-item">Undated item</a></td>
      </tr>
      <tr>
        <td>March 9, 2024</td>
        <td><a href="/about/team">About the team</a></td>
      </tr>
    </table>
  </main>
</body>
</html>`

func TestExtractCandidates(t *testing.T) {
	records, err := ExtractCandidates([]byte(disclosurePageHTML), "https://ir.example.com/stock/EXMP")
	require.NoError(t, err)
	require.Len(t, records, 4, "the nav link is outside the main region and /about/team has no path marker")

	byTitle := make(map[string]disclosure.Record, len(records))
	for _, record := range records {
		require.Equal(t, disclosure.SourceWebpage, record.Source)
		require.Equal(t, disclosure.DescriptionWebpage, record.Description)
		byTitle[record.Title] = record
	}

	annual := byTitle["Annual Report 2023"]
	require.Equal(t, "2024-03-02", annual.Date, "machine-readable datetime attribute wins")
	require.Equal(t, "https://ir.example.com/filings/annual-report-2023", annual.Link)

	update := byTitle["CEO update"]
	require.Equal(t, "2024-03-01", update.Date, "time element text is the second heuristic")

	notice := byTitle["Material event notice"]
	require.Equal(t, "2024-02-05", notice.Date, "month-name pattern in the row text is the fallback")
	require.Equal(t, "https://other.example.net/disclosure/material-event", notice.Link, "absolute targets stay untouched")

	undated := byTitle["Undated item"]
	require.Empty(t, undated.Date, "no heuristic matched; the reconciler drops it later")
}

func TestExtractCandidatesFallsBackToWholeDocument(t *testing.T) {
	pageHTML := `<html><body>
		<div class="listing">
			<ul>
				<li><time datetime="2024-04-10">April 10, 2024</time> <a href="/filings/q1-report">Q1 report</a></li>
			</ul>
		</div>
	</body></html>`

	records, err := ExtractCandidates([]byte(pageHTML), "https://ir.example.com/")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Q1 report", records[0].Title)
	require.Equal(t, "2024-04-10", records[0].Date)
	require.Equal(t, "https://ir.example.com/filings/q1-report", records[0].Link)
}

func TestExtractCandidatesInvalidPageURL(t *testing.T) {
	_, err := ExtractCandidates([]byte("<html></html>"), "://not-a-url")
	require.Error(t, err)
}

func TestHasPathMarker(t *testing.T) {
	require.True(t, hasPathMarker("/filings/123"))
	require.True(t, hasPathMarker("https://example.com/News/item?id=1"))
	require.True(t, hasPathMarker("/press-release/2024"))
	require.False(t, hasPathMarker("/about"))
	require.False(t, hasPathMarker("#top"))
}

func TestWebpageExtractorRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(disclosurePageHTML))
	}))
	defer server.Close()

	extractor := NewWebpageExtractor(http.DefaultClient, server.URL, testUserAgent, 5*time.Second)

	records, err := extractor.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 4)
}

func TestWebpageExtractorRunHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	extractor := NewWebpageExtractor(http.DefaultClient, server.URL, testUserAgent, 5*time.Second)

	_, err := extractor.Run(context.Background())
	require.Error(t, err)
}
