package api

import (
	"github.com/tickerwatch/disclosure-comb/app/tasks"
	"github.com/tickerwatch/disclosure-comb/app/watch"
)

type Handler struct {
	configCache *watch.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
	outputDir   string
	pageSize    int
}
