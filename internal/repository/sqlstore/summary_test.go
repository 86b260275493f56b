package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/repository"
)

func TestSummaryUpsert_SameWeekUpdatesRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "h")

	week := &model.WeeklySummary{
		UserID:        u.ID,
		WeekStartDate: date(t, "2024-01-01"),
		WeekEndDate:   date(t, "2024-01-07"),
		AvgHours:      7.5,
		EntryCount:    2,
	}
	first, err := s.Summaries().Upsert(ctx, week, time.UnixMilli(1000))
	require.NoError(t, err)

	week.AvgHours, week.EntryCount = 8, 3
	second, err := s.Summaries().Upsert(ctx, week, time.UnixMilli(2000))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 8.0, second.AvgHours)
	assert.Equal(t, 3, second.EntryCount)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.WeekEndDate.Equal(date(t, "2024-01-07")))

	n, err := s.Summaries().Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSummaryList_LatestWeekFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "h")

	for _, end := range []string{"2024-01-14", "2024-01-07", "2024-01-21"} {
		e := date(t, end)
		_, err := s.Summaries().Upsert(ctx, &model.WeeklySummary{
			UserID: u.ID, WeekStartDate: e.AddDate(0, 0, -6), WeekEndDate: e, AvgHours: 7, EntryCount: 1,
		}, time.Now())
		require.NoError(t, err)
	}

	got, err := s.Summaries().List(ctx, u.ID, repository.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-21", formatDate(got[0].WeekEndDate))
	assert.Equal(t, "2024-01-14", formatDate(got[1].WeekEndDate))
	assert.Equal(t, "2024-01-15", formatDate(got[0].WeekStartDate))

	rest, err := s.Summaries().List(ctx, u.ID, repository.ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "2024-01-07", formatDate(rest[0].WeekEndDate))
}
