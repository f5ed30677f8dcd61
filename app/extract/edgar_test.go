package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tickerwatch/disclosure-comb/app/disclosure"
)

const testUserAgent = "disclosure-comb test (dev@tickerwatch.dev)"

func newTestEdgarExtractor(ticker string, directoryURL, submissionsFormat string) *EdgarExtractor {
	e := NewEdgarExtractor(http.DefaultClient, ticker, testUserAgent, 5*time.Second)
	if directoryURL != "" {
		e.directoryURL = directoryURL
	}
	if submissionsFormat != "" {
		e.submissionsFormat = submissionsFormat
	}
	return e
}

func serveJSON(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))
}

func TestResolveIssuerID(t *testing.T) {
	directory := serveJSON(t, `{
		"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
		"1": {"cik_str": 123456, "ticker": "EXMP", "title": "Example Corp"}
	}`)
	defer directory.Close()

	extractor := newTestEdgarExtractor("exmp", directory.URL, "")

	issuerID, err := extractor.ResolveIssuerID(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0000123456", issuerID, "identifier must be zero-padded to 10 digits and matched case-insensitively")
}

func TestResolveIssuerIDUnknownTicker(t *testing.T) {
	directory := serveJSON(t, `{"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}}`)
	defer directory.Close()

	extractor := newTestEdgarExtractor("NOPE", directory.URL, "")

	issuerID, err := extractor.ResolveIssuerID(context.Background())
	require.NoError(t, err)
	require.Empty(t, issuerID)
}

func TestResolveIssuerIDHTTPFailurePropagates(t *testing.T) {
	directory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer directory.Close()

	extractor := newTestEdgarExtractor("EXMP", directory.URL, "")

	_, err := extractor.ResolveIssuerID(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}

func TestFetchFilingsArchiveLinkConstruction(t *testing.T) {
	submissions := serveJSON(t, `{
		"filings": {"recent": {
			"form": ["8-K"],
			"filingDate": ["2024-03-01"],
			"accessionNumber": ["0001234567-24-000012"],
			"primaryDocument": ["ex1.htm"]
		}}
	}`)
	defer submissions.Close()

	extractor := newTestEdgarExtractor("EXMP", "", submissions.URL+"/submissions/CIK%s.json")

	records, err := extractor.FetchFilings(context.Background(), "0000123456")
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	require.Equal(t, "8-K filed", record.Title)
	require.Equal(t, "2024-03-01", record.Date)
	require.Equal(t, disclosure.DescriptionRegulatory, record.Description)
	require.Equal(t, disclosure.SourceRegulatory, record.Source)
	require.Equal(t, "https://www.sec.gov/Archives/edgar/data/123456/000123456724000012/ex1.htm", record.Link)
}

func TestFetchFilingsFormAllowList(t *testing.T) {
	submissions := serveJSON(t, `{
		"filings": {"recent": {
			"form": ["10-K", "SC 13G", "8-K", "CORRESP", "DEF 14A", "3"],
			"filingDate": ["2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06"],
			"accessionNumber": ["0000000001-24-000001", "0000000001-24-000002", "0000000001-24-000003", "0000000001-24-000004", "0000000001-24-000005", "0000000001-24-000006"],
			"primaryDocument": ["a.htm", "b.htm", "c.htm", "d.htm", "e.htm", "f.htm"]
		}}
	}`)
	defer submissions.Close()

	extractor := newTestEdgarExtractor("EXMP", "", submissions.URL+"/submissions/CIK%s.json")

	records, err := extractor.FetchFilings(context.Background(), "0000123456")
	require.NoError(t, err)
	require.Len(t, records, 3)

	titles := []string{records[0].Title, records[1].Title, records[2].Title}
	require.Equal(t, []string{"10-K filed", "8-K filed", "DEF 14A filed"}, titles)
}

func TestFetchFilingsCapsAtMaxFilings(t *testing.T) {
	recent := struct {
		Form            []string `json:"form"`
		FilingDate      []string `json:"filingDate"`
		AccessionNumber []string `json:"accessionNumber"`
		PrimaryDocument []string `json:"primaryDocument"`
	}{}
	for i := 0; i < maxFilings+50; i++ {
		recent.Form = append(recent.Form, "8-K")
		recent.FilingDate = append(recent.FilingDate, "2024-01-01")
		recent.AccessionNumber = append(recent.AccessionNumber, fmt.Sprintf("0000000001-24-%06d", i))
		recent.PrimaryDocument = append(recent.PrimaryDocument, fmt.Sprintf("doc%d.htm", i))
	}
	payload, err := json.Marshal(map[string]interface{}{
		"filings": map[string]interface{}{"recent": recent},
	})
	require.NoError(t, err)

	submissions := serveJSON(t, string(payload))
	defer submissions.Close()

	extractor := newTestEdgarExtractor("EXMP", "", submissions.URL+"/submissions/CIK%s.json")

	records, err := extractor.FetchFilings(context.Background(), "0000123456")
	require.NoError(t, err)
	require.Len(t, records, maxFilings)
}

func TestRunUnresolvedTickerYieldsEmptyResult(t *testing.T) {
	directory := serveJSON(t, `{"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}}`)
	defer directory.Close()

	extractor := newTestEdgarExtractor("NOPE", directory.URL, "")

	records, err := extractor.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestRunDirectoryFailurePropagates(t *testing.T) {
	directory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer directory.Close()

	extractor := newTestEdgarExtractor("EXMP", directory.URL, "")

	_, err := extractor.Run(context.Background())
	require.Error(t, err)
}
