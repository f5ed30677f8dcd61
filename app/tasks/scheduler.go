package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tickerwatch/disclosure-comb/app/cfg"
	"github.com/tickerwatch/disclosure-comb/app/disclosure"
	"github.com/tickerwatch/disclosure-comb/app/watch"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs watch refreshes on a worker pool. Each watch's next run time
// is tracked in memory and honors its configured refresh interval.
type Scheduler struct {
	configCache *watch.ConfigCache
	httpClient  *http.Client
	reconciler  *disclosure.Reconciler
	writer      *disclosure.Writer
	outputDir   string
	userAgent   string
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu      sync.Mutex
	nextRun map[string]time.Time
}

func NewScheduler(configCache *watch.ConfigCache) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache: configCache,
		httpClient:  &http.Client{},
		reconciler:  disclosure.NewReconciler(),
		writer:      disclosure.NewWriter(),
		outputDir:   cfg.OutputDir,
		userAgent:   cfg.UserAgent,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
		nextRun:     make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueRefresh schedules an immediate refresh of one watch, bypassing its
// refresh interval.
func (s *Scheduler) EnqueueRefresh(config *watch.Config) error {
	task := NewRefreshWatchTask(config, s.httpClient, s.reconciler, s.writer, s.outputDir, s.userAgent)
	if err := s.EnqueueTask(task); err != nil {
		return err
	}

	s.markScheduled(config)
	return nil
}

func (s *Scheduler) enqueueDueTasks() {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled watch configurations found")
		return
	}

	now := time.Now()

	for name, config := range configs {
		s.mu.Lock()
		next, known := s.nextRun[name]
		s.mu.Unlock()

		if known && now.Before(next) {
			continue
		}

		if err := s.EnqueueRefresh(config); err != nil {
			slog.Warn("Failed to enqueue refresh task", "watch", name, "error", err)
		}
	}
}

func (s *Scheduler) markScheduled(config *watch.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRun[config.Name] = time.Now().Add(config.Settings.GetRefreshInterval())
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.runTask(id, task)
		}
	}
}

func (s *Scheduler) runTask(workerID int, task TaskInterface) {
	task.Start()

	err := task.Execute(s.ctx)
	if err == nil {
		return
	}

	if task.CanRetry() {
		task.IncrementRetryCount()
		slog.Warn("Task failed, retrying",
			"worker", workerID,
			"task", task.GetID(),
			"watch", task.GetWatchName(),
			"attempt", task.GetRetryCount(),
			"max_retries", task.GetMaxRetries(),
			"error", err)

		if enqueueErr := s.EnqueueTask(task); enqueueErr != nil {
			slog.Error("Failed to re-enqueue task",
				"task", task.GetID(),
				"watch", task.GetWatchName(),
				"error", enqueueErr)
		}
		return
	}

	slog.Error("Task failed permanently",
		"worker", workerID,
		"task", task.GetID(),
		"watch", task.GetWatchName(),
		"retries", task.GetRetryCount(),
		"error", err)
}
