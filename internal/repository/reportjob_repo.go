package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// ReportJobRepo remembers which external reporting job serves each
// (channel, report type) pair so jobs are created once and reused forever.
type ReportJobRepo struct {
	pool *pgxpool.Pool
}

func NewReportJobRepo(pool *pgxpool.Pool) *ReportJobRepo {
	return &ReportJobRepo{pool: pool}
}

// Get returns the recorded job for a (channel, report type) pair, or nil.
func (r *ReportJobRepo) Get(ctx context.Context, channelID, reportType string) (*model.ReportingJobRecord, error) {
	var rec model.ReportingJobRecord
	err := r.pool.QueryRow(ctx, `
		SELECT channel_id, report_type, job_id, name, report_type_id
		FROM reporting_jobs
		WHERE channel_id = $1 AND report_type = $2`, channelID, reportType).
		Scan(&rec.ChannelID, &rec.ReportType, &rec.JobID, &rec.Name, &rec.ReportTypeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save records (or re-records) the job backing a (channel, report type) pair.
func (r *ReportJobRepo) Save(ctx context.Context, rec *model.ReportingJobRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reporting_jobs (channel_id, report_type, job_id, name, report_type_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (channel_id, report_type) DO UPDATE
		SET job_id = EXCLUDED.job_id,
		    name = EXCLUDED.name,
		    report_type_id = EXCLUDED.report_type_id`,
		rec.ChannelID, rec.ReportType, rec.JobID, rec.Name, rec.ReportTypeID)
	return err
}
