package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// SummaryRepo stores the last generated summary per user. Overwritten
// wholesale on every successful refresh job; read-mostly.
type SummaryRepo struct {
	pool *pgxpool.Pool
}

func NewSummaryRepo(pool *pgxpool.Pool) *SummaryRepo {
	return &SummaryRepo{pool: pool}
}

// Get returns the cached summary for a user, or nil if none exists.
func (r *SummaryRepo) Get(ctx context.Context, userID string) (*model.CachedSummary, error) {
	var cached model.CachedSummary
	var raw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, summary, generated_at, refresh_job_id
		FROM cached_summaries
		WHERE user_id = $1`, userID).
		Scan(&cached.UserID, &raw, &cached.GeneratedAt, &cached.RefreshJobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &cached.Summary); err != nil {
		return nil, err
	}
	return &cached, nil
}

// Upsert replaces a user's cached summary.
func (r *SummaryRepo) Upsert(ctx context.Context, cached *model.CachedSummary) error {
	raw, err := json.Marshal(cached.Summary)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO cached_summaries (user_id, summary, generated_at, refresh_job_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET summary = EXCLUDED.summary,
		    generated_at = EXCLUDED.generated_at,
		    refresh_job_id = EXCLUDED.refresh_job_id`,
		cached.UserID, raw, cached.GeneratedAt, cached.RefreshJobID)
	return err
}

// Delete drops a user's cached summary (called on disconnect).
func (r *SummaryRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cached_summaries WHERE user_id = $1`, userID)
	return err
}
