package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// jobRunTimeout bounds one background refresh run end to end.
const jobRunTimeout = 10 * time.Minute

// JobStore is the authoritative refresh-job store: one row per job,
// last-requester-wins. Dedup needs only the latest row per user.
type JobStore interface {
	Insert(ctx context.Context, j *model.RefreshJob) error
	LatestByUser(ctx context.Context, userID string) (*model.RefreshJob, error)
	GetByID(ctx context.Context, userID, jobID string) (*model.RefreshJob, error)
	MarkRunning(ctx context.Context, jobID string, startedAt time.Time) error
	SetChannelsTotal(ctx context.Context, jobID string, channelsTotal int) error
	MarkSucceeded(ctx context.Context, jobID string, finishedAt time.Time, channelsProcessed int) error
	MarkFailed(ctx context.Context, jobID string, finishedAt time.Time, errMsg string) error
}

// ConnectionLister resolves the connections a job will process.
type ConnectionLister interface {
	ListByUser(ctx context.Context, userID string) ([]model.Connection, error)
}

// SummaryWriter persists the merged summary produced by a job.
type SummaryWriter interface {
	Upsert(ctx context.Context, cached *model.CachedSummary) error
}

// SummaryBuilder runs the per-connection fetch/aggregate pipeline.
type SummaryBuilder interface {
	BuildSummary(ctx context.Context, conns []model.Connection) (*model.Summary, error)
}

// EnqueueOptions controls dedup and cooldown behaviour at enqueue time.
type EnqueueOptions struct {
	// ReuseRunning returns the user's latest job unchanged when it is still
	// queued or running, instead of creating a second one.
	ReuseRunning bool
	// MinInterval, when nonzero, returns the latest job unchanged if it was
	// requested within the interval, even if terminal (auto-trigger cooldown).
	MinInterval time.Duration
	// Trigger is recorded in the job meta: manual or auto.
	Trigger string
}

// RefreshService orchestrates refresh jobs through
// queued → running → {succeeded, failed}.
type RefreshService struct {
	jobs      JobStore
	conns     ConnectionLister
	summaries SummaryWriter
	builder   SummaryBuilder
	now       func() time.Time

	// OnEnqueue, when set, observes every enqueue decision regardless of
	// caller (manual request, summary read, sweep).
	OnEnqueue func(trigger string, reused bool)
}

func NewRefreshService(jobs JobStore, conns ConnectionLister, summaries SummaryWriter, builder SummaryBuilder) *RefreshService {
	return &RefreshService{
		jobs:      jobs,
		conns:     conns,
		summaries: summaries,
		builder:   builder,
		now:       time.Now,
	}
}

// reuseExisting decides whether an enqueue should return the latest job
// unchanged. Pure over the latest row: dedup (active job + ReuseRunning) or
// cooldown (request within MinInterval, regardless of outcome).
func reuseExisting(latest *model.RefreshJob, opts EnqueueOptions, now time.Time) bool {
	if latest == nil {
		return false
	}
	if opts.ReuseRunning && latest.Active() {
		return true
	}
	if opts.MinInterval > 0 && now.Sub(latest.RequestedAt) < opts.MinInterval {
		return true
	}
	return false
}

// Enqueue creates a new refresh job for the user, or returns the existing one
// per the dedup/cooldown rules. The returned bool reports whether an existing
// job was reused. On a fresh enqueue the pipeline starts in the background;
// the caller never blocks on it.
func (s *RefreshService) Enqueue(ctx context.Context, userID string, opts EnqueueOptions) (*model.RefreshJob, bool, error) {
	trigger := opts.Trigger
	if trigger == "" {
		trigger = model.TriggerManual
	}

	latest, err := s.jobs.LatestByUser(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("latest job lookup: %w", err)
	}
	if reuseExisting(latest, opts, s.now()) {
		s.observe(trigger, true)
		return latest, true, nil
	}

	job := &model.RefreshJob{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      model.JobQueued,
		RequestedAt: s.now(),
		Meta:        map[string]string{"trigger": trigger},
	}
	if err := s.jobs.Insert(ctx, job); err != nil {
		return nil, false, fmt.Errorf("insert job: %w", err)
	}

	s.observe(trigger, false)
	go s.run(job)
	return job, false, nil
}

func (s *RefreshService) observe(trigger string, reused bool) {
	if s.OnEnqueue != nil {
		s.OnEnqueue(trigger, reused)
	}
}

// Status returns a job by id, scoped to its owner. Nil when unknown.
func (s *RefreshService) Status(ctx context.Context, userID, jobID string) (*model.RefreshJob, error) {
	return s.jobs.GetByID(ctx, userID, jobID)
}

// run executes one job to a terminal state. Detached from the request context:
// the enqueue response returns while this keeps going. Connection-level
// failures are degraded inside the pipeline; only job-level failures (cannot
// list connections, cannot write the cache) abort to failed.
func (s *RefreshService) run(job *model.RefreshJob) {
	ctx, cancel := context.WithTimeout(context.Background(), jobRunTimeout)
	defer cancel()

	// Running comes first: queued → running → {succeeded, failed} is the only
	// valid sequence, so even a connection-listing failure is observed from
	// running.
	if err := s.jobs.MarkRunning(ctx, job.ID, s.now()); err != nil {
		// The job never left queued; failing it here would skip running.
		log.Printf("refresh: job %s could not start: %v", job.ID, err)
		return
	}

	conns, err := s.conns.ListByUser(ctx, job.UserID)
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("list connections: %w", err))
		return
	}
	if err := s.jobs.SetChannelsTotal(ctx, job.ID, len(conns)); err != nil {
		log.Printf("refresh: job %s channel count write failed: %v", job.ID, err)
	}
	log.Printf("refresh: job %s running for %d connection(s)", job.ID, len(conns))

	summary, err := s.builder.BuildSummary(ctx, conns)
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("build summary: %w", err))
		return
	}

	cached := &model.CachedSummary{
		UserID:       job.UserID,
		Summary:      *summary,
		GeneratedAt:  s.now(),
		RefreshJobID: job.ID,
	}
	if err := s.summaries.Upsert(ctx, cached); err != nil {
		s.fail(ctx, job, fmt.Errorf("write summary cache: %w", err))
		return
	}

	if err := s.jobs.MarkSucceeded(ctx, job.ID, s.now(), len(conns)); err != nil {
		log.Printf("refresh: job %s finished but status write failed: %v", job.ID, err)
		return
	}
	log.Printf("refresh: job %s succeeded", job.ID)
}

func (s *RefreshService) fail(ctx context.Context, job *model.RefreshJob, cause error) {
	log.Printf("refresh: job %s failed: %v", job.ID, cause)
	if err := s.jobs.MarkFailed(ctx, job.ID, s.now(), cause.Error()); err != nil {
		log.Printf("refresh: job %s failure write failed: %v", job.ID, err)
	}
}
