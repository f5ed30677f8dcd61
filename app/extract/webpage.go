package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/tickerwatch/disclosure-comb/app/disclosure"
)

// pathMarkers identify link targets pointing at a filing, news item, or
// disclosure document. An anchor qualifies as a candidate only when its href
// contains one of these.
var pathMarkers = []string{
	"/filing",
	"/filings",
	"/news",
	"/disclosure",
	"/document",
	"/press-release",
}

var monthDatePattern = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)\.?\s+\d{1,2},\s+\d{4}`)

// WebpageExtractor pulls candidate records out of a rendered disclosure page.
// The page carries no stable contract, so extraction is heuristic and every
// failure degrades to an empty result at the caller.
type WebpageExtractor struct {
	httpClient *http.Client
	pageURL    string
	userAgent  string
	timeout    time.Duration
}

func NewWebpageExtractor(httpClient *http.Client, pageURL string, userAgent string, timeout time.Duration) *WebpageExtractor {
	return &WebpageExtractor{
		httpClient: httpClient,
		pageURL:    pageURL,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (e *WebpageExtractor) Name() string {
	return string(disclosure.SourceWebpage)
}

func (e *WebpageExtractor) Run(ctx context.Context) ([]disclosure.Record, error) {
	pageHTML, err := e.fetchPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	return ExtractCandidates(pageHTML, e.pageURL)
}

// ExtractCandidates scans the page's anchor elements for disclosure links.
// The scan is scoped to a best-effort main content region first and falls
// back to the whole document when that region yields nothing.
func ExtractCandidates(pageHTML []byte, pageURL string) ([]disclosure.Record, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	records := scanAnchors(mainRegion(doc, pageHTML, base), base)
	if len(records) == 0 {
		records = scanAnchors(doc.Selection, base)
	}

	return records, nil
}

// mainRegion picks the container to scan: an explicit main-content element
// when the page has one, readability's notion of the article content
// otherwise, the whole document as a last resort.
func mainRegion(doc *goquery.Document, pageHTML []byte, base *url.URL) *goquery.Selection {
	if sel := doc.Find(`main, [role="main"], #main-content, #content`).First(); sel.Length() > 0 {
		return sel
	}

	article, err := readability.FromReader(bytes.NewReader(pageHTML), base)
	if err == nil && article.Content != "" {
		if contentDoc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content)); err == nil {
			return contentDoc.Selection
		}
	}

	return doc.Selection
}

func scanAnchors(scope *goquery.Selection, base *url.URL) []disclosure.Record {
	var records []disclosure.Record

	scope.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		if !hasPathMarker(href) {
			return
		}

		records = append(records, disclosure.Record{
			Source:      disclosure.SourceWebpage,
			Title:       strings.TrimSpace(anchor.Text()),
			Date:        anchorDate(anchor),
			Description: disclosure.DescriptionWebpage,
			Link:        resolveLink(base, href),
		})
	})

	return records
}

func hasPathMarker(href string) bool {
	href = strings.ToLower(href)
	for _, marker := range pathMarkers {
		if strings.Contains(href, marker) {
			return true
		}
	}
	return false
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// anchorDate applies the date heuristics in priority order, scoped to the
// anchor's containing row or card element: a machine-readable timestamp on a
// nested time element, then the element's visible text, then a month-name
// pattern anywhere in the container's text.
func anchorDate(anchor *goquery.Selection) string {
	container := anchor.Closest("tr, article, li, div")
	if container.Length() == 0 {
		container = anchor.Parent()
	}

	timeEl := container.Find("time").First()
	if timeEl.Length() > 0 {
		if stamp, ok := timeEl.Attr("datetime"); ok {
			if date := disclosure.NormalizeDate(stamp); date != "" {
				return date
			}
		}
		if date := disclosure.NormalizeDate(timeEl.Text()); date != "" {
			return date
		}
	}

	if match := monthDatePattern.FindString(container.Text()); match != "" {
		return disclosure.NormalizeDate(strings.ReplaceAll(match, ".", ""))
	}

	return ""
}

func (e *WebpageExtractor) fetchPage(ctx context.Context) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", e.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
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
