package tasks

import (
	"context"
	"time"

	"github.com/tickerwatch/disclosure-comb/app/watch"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetWatchName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

// TaskSchedulerInterface is what the rest of the application sees of the
// background machinery: lifecycle control plus on-demand refreshes.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueRefresh(config *watch.Config) error
}
