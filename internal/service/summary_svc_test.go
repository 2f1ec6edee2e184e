package service

import (
	"context"
	"testing"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

type fakeSummaryStore struct {
	cached  *model.CachedSummary
	deleted []string
}

func (f *fakeSummaryStore) Get(ctx context.Context, userID string) (*model.CachedSummary, error) {
	return f.cached, nil
}

func (f *fakeSummaryStore) Delete(ctx context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeConnCounter struct {
	count int
}

func (f *fakeConnCounter) CountByUser(ctx context.Context, userID string) (int, error) {
	return f.count, nil
}

type fakeEnqueuer struct {
	calls  int
	opts   EnqueueOptions
	job    *model.RefreshJob
	reused bool
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, userID string, opts EnqueueOptions) (*model.RefreshJob, bool, error) {
	f.calls++
	f.opts = opts
	return f.job, f.reused, nil
}

func TestGetSummary_FreshCacheNoRefresh(t *testing.T) {
	store := &fakeSummaryStore{cached: &model.CachedSummary{
		UserID:      "user-1",
		Summary:     model.Summary{Channels: []model.ChannelSummary{{ChannelID: "UC1"}}},
		GeneratedAt: time.Now().Add(-time.Hour),
	}}
	enqueuer := &fakeEnqueuer{}

	svc := NewSummaryService(store, &fakeConnCounter{count: 1}, enqueuer, 24*time.Hour, 10*time.Minute)

	resp, err := svc.GetSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSummary error: %v", err)
	}
	if resp.CacheStatus != model.CacheReady {
		t.Errorf("cacheStatus = %s, want ready", resp.CacheStatus)
	}
	if len(resp.Channels) != 1 {
		t.Errorf("channels = %d, want 1", len(resp.Channels))
	}
	if resp.GeneratedAt == nil {
		t.Error("generatedAt should be set for a cache hit")
	}
	if enqueuer.calls != 0 {
		t.Errorf("enqueue called %d times for a fresh cache, want 0", enqueuer.calls)
	}
}

func TestGetSummary_StaleCacheReturnsDataAndQueues(t *testing.T) {
	store := &fakeSummaryStore{cached: &model.CachedSummary{
		UserID:      "user-1",
		Summary:     model.Summary{Channels: []model.ChannelSummary{{ChannelID: "UC1", Views: 500}}},
		GeneratedAt: time.Now().Add(-25 * time.Hour),
	}}
	enqueuer := &fakeEnqueuer{job: &model.RefreshJob{ID: "job-7", Status: model.JobQueued}}

	svc := NewSummaryService(store, &fakeConnCounter{count: 1}, enqueuer, 24*time.Hour, 10*time.Minute)

	resp, err := svc.GetSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSummary error: %v", err)
	}

	// Stale data still comes back immediately; the refresh happens behind it.
	if resp.CacheStatus != model.CacheReady {
		t.Errorf("cacheStatus = %s, want ready", resp.CacheStatus)
	}
	if resp.Channels[0].Views != 500 {
		t.Errorf("stale data should still be served, got %+v", resp.Channels[0])
	}
	if enqueuer.calls != 1 {
		t.Fatalf("enqueue called %d times, want 1", enqueuer.calls)
	}
	if !resp.AutoRefresh.Queued || resp.AutoRefresh.JobID != "job-7" {
		t.Errorf("autoRefresh = %+v", resp.AutoRefresh)
	}
	if enqueuer.opts.Trigger != model.TriggerAuto || !enqueuer.opts.ReuseRunning {
		t.Errorf("enqueue opts = %+v", enqueuer.opts)
	}
	if enqueuer.opts.MinInterval != 10*time.Minute {
		t.Errorf("cooldown = %v, want 10m", enqueuer.opts.MinInterval)
	}
}

func TestGetSummary_EmptyCacheQueues(t *testing.T) {
	enqueuer := &fakeEnqueuer{job: &model.RefreshJob{ID: "job-1", Status: model.JobQueued}}

	svc := NewSummaryService(&fakeSummaryStore{}, &fakeConnCounter{count: 2}, enqueuer, 24*time.Hour, 0)

	resp, err := svc.GetSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSummary error: %v", err)
	}
	if resp.CacheStatus != model.CacheEmpty {
		t.Errorf("cacheStatus = %s, want empty", resp.CacheStatus)
	}
	if resp.GeneratedAt != nil {
		t.Error("generatedAt should be nil on a cache miss")
	}
	if enqueuer.calls != 1 {
		t.Errorf("enqueue called %d times, want 1", enqueuer.calls)
	}
}

func TestGetSummary_NoConnectionsNoRefresh(t *testing.T) {
	enqueuer := &fakeEnqueuer{}

	svc := NewSummaryService(&fakeSummaryStore{}, &fakeConnCounter{count: 0}, enqueuer, 24*time.Hour, 0)

	resp, err := svc.GetSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSummary error: %v", err)
	}
	if enqueuer.calls != 0 {
		t.Errorf("enqueue called %d times with zero connections, want 0", enqueuer.calls)
	}
	if resp.AutoRefresh.JobID != "" {
		t.Errorf("autoRefresh should be empty, got %+v", resp.AutoRefresh)
	}
}

func TestGetSummary_ReusedJobNotMarkedQueued(t *testing.T) {
	enqueuer := &fakeEnqueuer{
		job:    &model.RefreshJob{ID: "job-9", Status: model.JobRunning},
		reused: true,
	}

	svc := NewSummaryService(&fakeSummaryStore{}, &fakeConnCounter{count: 1}, enqueuer, 24*time.Hour, 10*time.Minute)

	resp, err := svc.GetSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSummary error: %v", err)
	}
	if resp.AutoRefresh.Queued {
		t.Error("a reused job should not report queued=true")
	}
	if resp.AutoRefresh.JobID != "job-9" || resp.AutoRefresh.Status != model.JobRunning {
		t.Errorf("autoRefresh = %+v", resp.AutoRefresh)
	}
}

func TestInvalidate(t *testing.T) {
	store := &fakeSummaryStore{}
	svc := NewSummaryService(store, &fakeConnCounter{}, &fakeEnqueuer{}, time.Hour, 0)

	if err := svc.Invalidate(context.Background(), "user-1"); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "user-1" {
		t.Errorf("deleted = %v, want [user-1]", store.deleted)
	}
}
