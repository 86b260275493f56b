// Package scheduler runs the weekly summary job.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/model"
)

// Run time: Monday 00:05 UTC, just after the summarized week closes.
const (
	runWeekday = time.Monday
	runHour    = 0
	runMinute  = 5
)

// UserLister lists every stored user. *service.UserService implements it.
type UserLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// WeekSummarizer is the part of *service.SummaryService the job needs.
type WeekSummarizer interface {
	ComputeWeek(ctx context.Context, userID string, ref time.Time) (*model.WeeklySummary, error)
}

type Weekly struct {
	users     UserLister
	summaries WeekSummarizer
	now       func() time.Time
	logger    *zap.Logger
}

func NewWeekly(users UserLister, summaries WeekSummarizer, logger *zap.Logger) *Weekly {
	return &Weekly{users: users, summaries: summaries, now: time.Now, logger: logger}
}

// NextRun returns the first Monday 00:05 UTC strictly after now.
func NextRun(now time.Time) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), runHour, runMinute, 0, 0, time.UTC)
	next = next.AddDate(0, 0, (int(runWeekday)-int(next.Weekday())+7)%7)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// RunOnce summarizes the week before ref for every user. A failure for one
// user is logged and the run moves on; the returned count is the number of
// summaries written.
func (w *Weekly) RunOnce(ctx context.Context, ref time.Time) (int, error) {
	ids, err := w.users.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
		s, err := w.summaries.ComputeWeek(ctx, id, ref)
		if err != nil {
			w.logger.Error("weekly summary failed", zap.String("userID", id), zap.Error(err))
			continue
		}
		if s != nil {
			written++
		}
	}
	return written, nil
}

// Start blocks, running the job every week until ctx is cancelled.
func (w *Weekly) Start(ctx context.Context) {
	for {
		next := NextRun(w.now())
		w.logger.Info("weekly summary scheduled", zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case fired := <-timer.C:
			start := time.Now()
			n, err := w.RunOnce(ctx, fired.UTC())
			if err != nil {
				w.logger.Error("weekly summary run aborted", zap.Error(err))
				continue
			}
			w.logger.Info("weekly summary run finished",
				zap.Int("summaries", n),
				zap.Duration("took", time.Since(start)),
			)
		}
	}
}
