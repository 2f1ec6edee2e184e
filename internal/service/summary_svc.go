package service

import (
	"context"
	"log"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// SummaryStore reads and invalidates the per-user cached summary.
type SummaryStore interface {
	Get(ctx context.Context, userID string) (*model.CachedSummary, error)
	Delete(ctx context.Context, userID string) error
}

// ConnectionCounter reports how many channels a user has linked.
type ConnectionCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// RefreshEnqueuer is the slice of the orchestrator the read path needs.
type RefreshEnqueuer interface {
	Enqueue(ctx context.Context, userID string, opts EnqueueOptions) (*model.RefreshJob, bool, error)
}

// SummaryService is the cheap read path: return whatever is cached
// immediately and opportunistically queue a background refresh when the cache
// has gone stale.
type SummaryService struct {
	summaries  SummaryStore
	conns      ConnectionCounter
	refresh    RefreshEnqueuer
	staleAfter time.Duration
	cooldown   time.Duration
	now        func() time.Time
}

func NewSummaryService(summaries SummaryStore, conns ConnectionCounter, refresh RefreshEnqueuer, staleAfter, cooldown time.Duration) *SummaryService {
	return &SummaryService{
		summaries:  summaries,
		conns:      conns,
		refresh:    refresh,
		staleAfter: staleAfter,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

// GetSummary returns the cached summary (or an empty one) without ever
// blocking on a refresh. If the user has connections and the cache is absent
// or older than the staleness threshold, an auto refresh is enqueued with
// dedup and cooldown so repeated reads cannot storm the job queue.
func (s *SummaryService) GetSummary(ctx context.Context, userID string) (*model.SummaryResponse, error) {
	cached, err := s.summaries.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &model.SummaryResponse{CacheStatus: model.CacheEmpty}
	if cached != nil {
		resp.Summary = cached.Summary
		resp.CacheStatus = model.CacheReady
		generatedAt := cached.GeneratedAt
		resp.GeneratedAt = &generatedAt
	}

	if s.isStale(cached) {
		count, err := s.conns.CountByUser(ctx, userID)
		if err != nil {
			log.Printf("summary: connection count for auto-refresh failed: %v", err)
			count = 0
		}
		if count > 0 {
			job, reused, err := s.refresh.Enqueue(ctx, userID, EnqueueOptions{
				ReuseRunning: true,
				MinInterval:  s.cooldown,
				Trigger:      model.TriggerAuto,
			})
			if err != nil {
				log.Printf("summary: auto-refresh enqueue failed: %v", err)
			} else {
				resp.AutoRefresh = model.AutoRefreshInfo{
					Queued: !reused,
					JobID:  job.ID,
					Status: job.Status,
				}
			}
		}
	}

	return resp, nil
}

// Invalidate drops the user's cached summary (disconnect path).
func (s *SummaryService) Invalidate(ctx context.Context, userID string) error {
	return s.summaries.Delete(ctx, userID)
}

func (s *SummaryService) isStale(cached *model.CachedSummary) bool {
	if cached == nil {
		return true
	}
	return s.now().Sub(cached.GeneratedAt) > s.staleAfter
}
