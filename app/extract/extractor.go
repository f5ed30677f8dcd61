package extract

import (
	"context"
	"log/slog"

	"github.com/tickerwatch/disclosure-comb/app/disclosure"
)

// Extractor produces candidate records from one disclosure source.
type Extractor interface {
	Name() string
	Run(ctx context.Context) ([]disclosure.Record, error)
}

// Result pairs one extractor's output with its outcome. A non-nil Err marks a
// failed-recovered source: the pipeline continues on the remaining sources.
type Result struct {
	Source  string
	Records []disclosure.Record
	Err     error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Collect runs the extractors one after another. A failing extractor is
// recovered to an empty result so the remaining sources still contribute;
// every recovered failure is logged here.
func Collect(ctx context.Context, extractors ...Extractor) []Result {
	results := make([]Result, 0, len(extractors))

	for _, extractor := range extractors {
		records, err := extractor.Run(ctx)
		if err != nil {
			slog.Warn("Extraction failed, continuing without source",
				"source", extractor.Name(),
				"error", err)
			results = append(results, Result{Source: extractor.Name(), Err: err})
			continue
		}

		slog.Debug("Extraction completed",
			"source", extractor.Name(),
			"candidates", len(records))
		results = append(results, Result{Source: extractor.Name(), Records: records})
	}

	return results
}
