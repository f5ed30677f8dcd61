package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tickerwatch/disclosure-comb/app/disclosure"
)

const (
	defaultDirectoryURL      = "https://www.sec.gov/files/company_tickers.json"
	defaultSubmissionsFormat = "https://data.sec.gov/submissions/CIK%s.json"
	archiveURLFormat         = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"

	// Only the most recent filings are considered per run.
	maxFilings = 200

	regulatoryTitleSuffix = " filed"
)

// disclosureForms is the fixed allow-list of disclosure-relevant form types:
// periodic reports, current-event reports, and ownership/proxy filings.
var disclosureForms = map[string]bool{
	"10-K":    true,
	"10-Q":    true,
	"8-K":     true,
	"20-F":    true,
	"6-K":     true,
	"4":       true,
	"SC 13D":  true,
	"DEF 14A": true,
	"S-1":     true,
}

// EdgarExtractor resolves a ticker to its issuer identifier and maps the
// issuer's recent filing history into candidate records.
type EdgarExtractor struct {
	httpClient        *http.Client
	ticker            string
	userAgent         string
	timeout           time.Duration
	directoryURL      string
	submissionsFormat string
}

func NewEdgarExtractor(httpClient *http.Client, ticker string, userAgent string, timeout time.Duration) *EdgarExtractor {
	return &EdgarExtractor{
		httpClient:        httpClient,
		ticker:            ticker,
		userAgent:         userAgent,
		timeout:           timeout,
		directoryURL:      defaultDirectoryURL,
		submissionsFormat: defaultSubmissionsFormat,
	}
}

func (e *EdgarExtractor) Name() string {
	return string(disclosure.SourceRegulatory)
}

func (e *EdgarExtractor) Run(ctx context.Context) ([]disclosure.Record, error) {
	issuerID, err := e.ResolveIssuerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve issuer identifier: %w", err)
	}

	if issuerID == "" {
		slog.Warn("Ticker not found in issuer directory, yielding no regulatory records",
			"ticker", e.ticker)
		return []disclosure.Record{}, nil
	}

	records, err := e.FetchFilings(ctx, issuerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filing history: %w", err)
	}

	return records, nil
}

type directoryEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// ResolveIssuerID looks up the ticker in the issuer directory with a
// case-insensitive exact match. The identifier comes back zero-padded to the
// fixed 10-digit width; an unknown ticker yields an empty identifier without
// error, while a non-success directory response propagates.
func (e *EdgarExtractor) ResolveIssuerID(ctx context.Context) (string, error) {
	var directory map[string]directoryEntry
	if err := e.fetchJSON(ctx, e.directoryURL, &directory); err != nil {
		return "", err
	}

	for _, entry := range directory {
		if strings.EqualFold(entry.Ticker, e.ticker) {
			return fmt.Sprintf("%010d", entry.CIK), nil
		}
	}

	return "", nil
}

type submissionsResponse struct {
	Filings struct {
		Recent struct {
			Form            []string `json:"form"`
			FilingDate      []string `json:"filingDate"`
			AccessionNumber []string `json:"accessionNumber"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

// FetchFilings maps the issuer's recent filing history into candidate
// records, retaining only entries on the form allow-list. The history is a
// set of parallel arrays indexed by position.
func (e *EdgarExtractor) FetchFilings(ctx context.Context, issuerID string) ([]disclosure.Record, error) {
	var submissions submissionsResponse
	url := fmt.Sprintf(e.submissionsFormat, issuerID)
	if err := e.fetchJSON(ctx, url, &submissions); err != nil {
		return nil, err
	}

	recent := submissions.Filings.Recent
	count := len(recent.Form)
	if len(recent.FilingDate) < count {
		count = len(recent.FilingDate)
	}
	if len(recent.AccessionNumber) < count {
		count = len(recent.AccessionNumber)
	}
	if len(recent.PrimaryDocument) < count {
		count = len(recent.PrimaryDocument)
	}
	if count > maxFilings {
		count = maxFilings
	}

	records := make([]disclosure.Record, 0, count)
	for i := 0; i < count; i++ {
		form := recent.Form[i]
		if !disclosureForms[form] {
			continue
		}

		records = append(records, disclosure.Record{
			Source: disclosure.SourceRegulatory,
			Title:  form + regulatoryTitleSuffix,
			// Filing dates arrive already canonical
			Date:        recent.FilingDate[i],
			Description: disclosure.DescriptionRegulatory,
			Link:        e.archiveLink(issuerID, recent.AccessionNumber[i], recent.PrimaryDocument[i]),
		})
	}

	return records, nil
}

// archiveLink builds the deterministic document URL from the unpadded issuer
// identifier, the accession number with separators stripped, and the primary
// document filename.
func (e *EdgarExtractor) archiveLink(issuerID, accessionNumber, primaryDocument string) string {
	unpadded := strings.TrimLeft(issuerID, "0")
	accession := strings.ReplaceAll(accessionNumber, "-", "")
	return fmt.Sprintf(archiveURLFormat, unpadded, accession, primaryDocument)
}

func (e *EdgarExtractor) fetchJSON(ctx context.Context, url string, out interface{}) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// The regulatory source rejects anonymous clients
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
