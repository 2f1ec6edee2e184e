package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// JobRepo is the authoritative store for refresh jobs: one row per job,
// last-writer-wins. Concurrent orchestration per user is prevented by the
// dedup check at enqueue time, not by row locks.
type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

const jobColumns = `id, user_id, status, requested_at, started_at, finished_at,
	       error_message, channels_total, channels_processed, meta`

func scanJob(row pgx.Row) (*model.RefreshJob, error) {
	var j model.RefreshJob
	var meta []byte
	err := row.Scan(&j.ID, &j.UserID, &j.Status, &j.RequestedAt, &j.StartedAt,
		&j.FinishedAt, &j.ErrorMessage, &j.ChannelsTotal, &j.ChannelsProcessed, &meta)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &j.Meta)
	}
	return &j, nil
}

// Insert stores a freshly enqueued job.
func (r *JobRepo) Insert(ctx context.Context, j *model.RefreshJob) error {
	meta, err := json.Marshal(j.Meta)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO refresh_jobs (id, user_id, status, requested_at, meta)
		VALUES ($1, $2, $3, $4, $5)`,
		j.ID, j.UserID, j.Status, j.RequestedAt, meta)
	return err
}

// LatestByUser returns the user's most recently requested job, or nil.
func (r *JobRepo) LatestByUser(ctx context.Context, userID string) (*model.RefreshJob, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM refresh_jobs
		WHERE user_id = $1
		ORDER BY requested_at DESC
		LIMIT 1`, userID)

	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

// GetByID returns a job by id scoped to its owner, or nil if not found.
func (r *JobRepo) GetByID(ctx context.Context, userID, jobID string) (*model.RefreshJob, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM refresh_jobs
		WHERE id = $1 AND user_id = $2`, jobID, userID)

	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

// MarkRunning transitions a queued job to running.
func (r *JobRepo) MarkRunning(ctx context.Context, jobID string, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_jobs
		SET status = $1, started_at = $2
		WHERE id = $3 AND status = $4`,
		model.JobRunning, startedAt, jobID, model.JobQueued)
	return err
}

// SetChannelsTotal records how many connections a running job will process.
func (r *JobRepo) SetChannelsTotal(ctx context.Context, jobID string, channelsTotal int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_jobs
		SET channels_total = $1
		WHERE id = $2 AND status = $3`,
		channelsTotal, jobID, model.JobRunning)
	return err
}

// MarkSucceeded finishes a running job successfully.
func (r *JobRepo) MarkSucceeded(ctx context.Context, jobID string, finishedAt time.Time, channelsProcessed int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_jobs
		SET status = $1, finished_at = $2, channels_processed = $3
		WHERE id = $4 AND status = $5`,
		model.JobSucceeded, finishedAt, channelsProcessed, jobID, model.JobRunning)
	return err
}

// MarkFailed aborts a running job with an error message. Guarded so neither a
// terminal job nor one still queued is overwritten: running → failed is the
// only valid failure transition.
func (r *JobRepo) MarkFailed(ctx context.Context, jobID string, finishedAt time.Time, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_jobs
		SET status = $1, finished_at = $2, error_message = $3
		WHERE id = $4 AND status = $5`,
		model.JobFailed, finishedAt, errMsg, jobID, model.JobRunning)
	return err
}
