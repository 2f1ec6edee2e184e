package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// ErrPollTimeout is returned when a job does not reach a terminal state
// within the poller's timeout. The job itself keeps running; the poller just
// stops watching.
var ErrPollTimeout = errors.New("timed out waiting for refresh job")

// jobGetter is the slice of the job store the poller needs.
type jobGetter interface {
	GetByID(ctx context.Context, userID, jobID string) (*model.RefreshJob, error)
}

// Poller watches a refresh job until it reaches a terminal state or the
// timeout elapses. Clock and sleep are injectable so tests run without real
// timers; the poller does no work and holds nothing while waiting.
type Poller struct {
	jobs     jobGetter
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewPoller(jobs jobGetter, interval, timeout time.Duration) *Poller {
	return &Poller{
		jobs:     jobs,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait polls the job at the fixed interval, returning its final state, or
// ErrPollTimeout once the deadline passes. The latest observed state rides
// along with the timeout error's job return so callers can surface progress.
func (p *Poller) Wait(ctx context.Context, userID, jobID string) (*model.RefreshJob, error) {
	deadline := p.now().Add(p.timeout)

	for {
		job, err := p.jobs.GetByID(ctx, userID, jobID)
		if err != nil {
			return nil, err
		}
		if job == nil {
			return nil, fmt.Errorf("refresh job %s not found", jobID)
		}
		if job.Terminal() {
			return job, nil
		}

		if !p.now().Add(p.interval).Before(deadline) {
			return job, ErrPollTimeout
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			return job, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
