// internal/app/system/workers/readcleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/twfhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// MarkCleaner deletes read marks that fell behind the old-post cutoff.
type MarkCleaner interface {
	CleanupOldMarks(ctx context.Context) (int64, error)
}

// ReadCleanup is a background worker that prunes stale read marks.
type ReadCleanup struct {
	cleaner  MarkCleaner
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewReadCleanup creates the worker. interval is how often a pass runs.
func NewReadCleanup(cleaner MarkCleaner, logger *zap.Logger, interval time.Duration) *ReadCleanup {
	return &ReadCleanup{
		cleaner:  cleaner,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *ReadCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("read cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call twice.
func (w *ReadCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("read cleanup worker stopped")
}

func (w *ReadCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *ReadCleanup) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	count, err := w.cleaner.CleanupOldMarks(ctx)
	if err != nil {
		w.log.Error("failed to delete old read marks", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("deleted old read marks", zap.Int64("count", count))
	}
}
