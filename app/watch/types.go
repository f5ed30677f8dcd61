package watch

import "time"

// Config describes one watched ticker: its disclosure sources and the feed
// artifact the pipeline writes for it.
type Config struct {
	Name     string   // Derived from filename (without .yml extension)
	Ticker   string   `yaml:"ticker"`
	PageURL  string   `yaml:"page_url"` // rendered disclosure webpage, optional
	FeedURL  string   `yaml:"feed_url"` // RSS/Atom feed published by the page, optional
	Output   string   `yaml:"output"`   // artifact filename, defaults to <name>.json
	Settings Settings `yaml:"settings"`
}

type Settings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds, per upstream request
	MaxItems        int  `yaml:"max_items"`        // cap on records written to the artifact
}

func (s *Settings) GetRefreshInterval() time.Duration {
	if s.RefreshInterval <= 0 {
		return 3600 * time.Second
	}
	return time.Duration(s.RefreshInterval) * time.Second
}

func (s *Settings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}
