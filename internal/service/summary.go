package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/repository"
)

const DefaultSummaryLimit = 10

// PriorWeek returns the Monday 00:00:00.000 and Sunday 23:59:59.999 (UTC)
// of the calendar week before the one containing ref.
func PriorWeek(ref time.Time) (start, end time.Time) {
	day := calendarDate(ref.UTC())
	daysSinceMonday := (int(day.Weekday()) + 6) % 7
	start = day.AddDate(0, 0, -daysSinceMonday-7)
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// SummaryService computes and lists weekly averages.
type SummaryService struct {
	entries   repository.EntryRepository
	summaries repository.SummaryRepository
	now       Clock
	logger    *zap.Logger
}

func NewSummaryService(entries repository.EntryRepository, summaries repository.SummaryRepository, now Clock, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		entries:   entries,
		summaries: summaries,
		now:       clockOrDefault(now),
		logger:    logger,
	}
}

// ComputeWeek averages the user's entries over the week before ref and
// upserts the result. A week with no entries yields (nil, nil) and writes
// nothing. Recomputing with unchanged entries stores the same average on
// the same row.
func (s *SummaryService) ComputeWeek(ctx context.Context, userID string, ref time.Time) (*model.WeeklySummary, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	start, end := PriorWeek(ref)
	weekEnd := calendarDate(end)
	entries, err := s.entries.InRange(ctx, userID, repository.DateRange{From: &start, To: &weekEnd})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	var hours float64
	for _, e := range entries {
		hours += float64(e.Duration) / 60
	}

	summary, err := s.summaries.Upsert(ctx, &model.WeeklySummary{
		UserID:        userID,
		WeekStartDate: start,
		WeekEndDate:   weekEnd,
		AvgHours:      hours / float64(len(entries)),
		EntryCount:    len(entries),
	}, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("weekly summary computed",
		zap.String("user_id", userID),
		zap.Time("week_end", weekEnd),
		zap.Int("entries", summary.EntryCount),
		zap.Float64("avg_hours", summary.AvgHours),
	)
	return summary, nil
}

// ComputeLastWeek is ComputeWeek relative to the service clock.
func (s *SummaryService) ComputeLastWeek(ctx context.Context, userID string) (*model.WeeklySummary, error) {
	return s.ComputeWeek(ctx, userID, s.now())
}

// List returns one page of summaries, most recent week first.
func (s *SummaryService) List(ctx context.Context, userID string, page, limit int) (*model.SummaryPage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	page, limit, err := pageParams(page, limit, DefaultSummaryLimit)
	if err != nil {
		return nil, err
	}

	items, err := s.summaries.List(ctx, userID, repository.ListOptions{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}
	total, err := s.summaries.Count(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.SummaryPage{
		SummaryEntries: items,
		TotalEntries:   total,
		TotalPages:     model.TotalPages(total, limit),
		CurrentPage:    page,
	}, nil
}
