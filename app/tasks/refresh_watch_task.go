package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/tickerwatch/disclosure-comb/app/disclosure"
	"github.com/tickerwatch/disclosure-comb/app/extract"
	"github.com/tickerwatch/disclosure-comb/app/watch"
)

// RefreshWatchTask runs the full reconciliation pipeline for one watch:
// extract candidates from every configured source, reconcile, and replace the
// watch's feed artifact.
type RefreshWatchTask struct {
	Task
	WatchConfig *watch.Config
	httpClient  *http.Client
	reconciler  *disclosure.Reconciler
	writer      *disclosure.Writer
	outputDir   string
	userAgent   string
}

func NewRefreshWatchTask(watchConfig *watch.Config, httpClient *http.Client,
	reconciler *disclosure.Reconciler, writer *disclosure.Writer,
	outputDir string, userAgent string) *RefreshWatchTask {
	return &RefreshWatchTask{
		Task:        NewTask(TaskTypeRefreshWatch, watchConfig.Name),
		WatchConfig: watchConfig,
		httpClient:  httpClient,
		reconciler:  reconciler,
		writer:      writer,
		outputDir:   outputDir,
		userAgent:   userAgent,
	}
}

func (t *RefreshWatchTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.WatchConfig.Settings.Enabled {
		slog.Debug("Watch disabled, skipping", "watch", t.WatchName)
		return nil
	}

	results := extract.Collect(ctx, t.extractors()...)

	var candidates []disclosure.Record
	failedSources := 0
	for _, result := range results {
		if !result.OK() {
			failedSources++
			continue
		}
		candidates = append(candidates, result.Records...)
	}

	// A single dead source degrades the feed; all sources dead fails the run
	if len(results) > 0 && failedSources == len(results) {
		return fmt.Errorf("all %d sources failed for watch %s", failedSources, t.WatchName)
	}

	records := t.reconciler.Run(candidates)
	if max := t.WatchConfig.Settings.MaxItems; max > 0 && len(records) > max {
		records = records[:max]
	}

	path := filepath.Join(t.outputDir, t.WatchConfig.Output)
	if err := t.writer.Run(path, records); err != nil {
		return fmt.Errorf("failed to write feed artifact: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshWatch",
		"watch", t.WatchName,
		"duration", t.GetDuration(),
		"candidates", len(candidates),
		"written", len(records),
		"failed_sources", failedSources)

	return nil
}

func (t *RefreshWatchTask) extractors() []extract.Extractor {
	timeout := t.WatchConfig.Settings.GetTimeout()

	var extractors []extract.Extractor
	if t.WatchConfig.Ticker != "" {
		extractors = append(extractors,
			extract.NewEdgarExtractor(t.httpClient, t.WatchConfig.Ticker, t.userAgent, timeout))
	}
	if t.WatchConfig.PageURL != "" {
		extractors = append(extractors,
			extract.NewWebpageExtractor(t.httpClient, t.WatchConfig.PageURL, t.userAgent, timeout))
	}
	if t.WatchConfig.FeedURL != "" {
		extractors = append(extractors,
			extract.NewFeedSourceExtractor(t.httpClient, t.WatchConfig.FeedURL, t.userAgent, timeout))
	}

	return extractors
}
