package service

import (
	"context"
	"log"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// connectedUserLister enumerates users eligible for the sweep.
type connectedUserLister interface {
	UserIDsWithConnections(ctx context.Context) ([]string, error)
}

// summaryGetter reads the cached summary for the staleness check.
type summaryGetter interface {
	Get(ctx context.Context, userID string) (*model.CachedSummary, error)
}

// SweepWorker is a periodic background job that proactively enqueues
// auto-refreshes for every user with at least one connection, independent of
// read traffic. It applies the same staleness and cooldown rules as the
// summary read path.
type SweepWorker struct {
	users      connectedUserLister
	summaries  summaryGetter
	refresh    RefreshEnqueuer
	interval   time.Duration
	staleAfter time.Duration
	cooldown   time.Duration
	stopCh     chan struct{}
}

// NewSweepWorker creates a worker that ticks every interval.
func NewSweepWorker(users connectedUserLister, summaries summaryGetter, refresh RefreshEnqueuer, interval, staleAfter, cooldown time.Duration) *SweepWorker {
	return &SweepWorker{
		users:      users,
		summaries:  summaries,
		refresh:    refresh,
		interval:   interval,
		staleAfter: staleAfter,
		cooldown:   cooldown,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the periodic sweep loop. It runs one tick immediately, then
// every interval.
func (w *SweepWorker) Start(ctx context.Context) {
	log.Printf("sweep-worker: starting (interval=%s)", w.interval)

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("sweep-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("sweep-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *SweepWorker) Stop() {
	close(w.stopCh)
}

// tick runs one sweep: enqueue an auto refresh for every connected user whose
// summary is missing or stale. Per-user failures are logged and skipped.
func (w *SweepWorker) tick(ctx context.Context) {
	start := time.Now()

	userIDs, err := w.users.UserIDsWithConnections(ctx)
	if err != nil {
		log.Printf("sweep-worker: error listing users: %v", err)
		return
	}

	queued := 0
	for _, userID := range userIDs {
		cached, err := w.summaries.Get(ctx, userID)
		if err != nil {
			log.Printf("sweep-worker: summary lookup for user failed: %v", err)
			continue
		}
		if cached != nil && time.Since(cached.GeneratedAt) <= w.staleAfter {
			continue
		}

		_, reused, err := w.refresh.Enqueue(ctx, userID, EnqueueOptions{
			ReuseRunning: true,
			MinInterval:  w.cooldown,
			Trigger:      model.TriggerAuto,
		})
		if err != nil {
			log.Printf("sweep-worker: enqueue failed: %v", err)
			continue
		}
		if !reused {
			queued++
		}
	}

	elapsed := time.Since(start)
	log.Printf("sweep-worker: tick complete — %d users scanned, %d refreshes queued (%s)",
		len(userIDs), queued, elapsed.Round(time.Millisecond))
}
