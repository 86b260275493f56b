package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/repository"
)

var _ repository.SummaryRepository = (*SummaryStore)(nil)

type SummaryStore struct {
	conn *Connector
}

const summaryColumns = `id, user_id, week_start_date, week_end_date, avg_hours, entry_count, created_at, updated_at`

// Upsert keys on (user_id, week_end_date); recomputing a week rewrites the
// average and count on the existing row.
func (s *SummaryStore) Upsert(ctx context.Context, sum *model.WeeklySummary, now time.Time) (*model.WeeklySummary, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	ms := toMillis(now)
	row := db.QueryRowContext(ctx, rebind(s.conn.Driver(), `
		INSERT INTO weekly_summaries (id, user_id, week_start_date, week_end_date, avg_hours, entry_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, week_end_date) DO UPDATE SET
			week_start_date = excluded.week_start_date,
			avg_hours       = excluded.avg_hours,
			entry_count     = excluded.entry_count,
			updated_at      = excluded.updated_at
		RETURNING `+summaryColumns),
		xid.New().String(), sum.UserID, formatDate(sum.WeekStartDate), formatDate(sum.WeekEndDate),
		sum.AvgHours, sum.EntryCount, ms, ms,
	)

	out, err := scanSummary(row)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: upserting summary: %w", err)
	}
	return out, nil
}

func (s *SummaryStore) List(ctx context.Context, userID string, opts repository.ListOptions) ([]model.WeeklySummary, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, rebind(s.conn.Driver(), `
		SELECT `+summaryColumns+` FROM weekly_summaries
		WHERE user_id = ?
		ORDER BY week_end_date DESC
		LIMIT ? OFFSET ?`),
		userID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing summaries: %w", err)
	}
	defer rows.Close()

	out := make([]model.WeeklySummary, 0)
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: scanning summary: %w", err)
		}
		out = append(out, *sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating summaries: %w", err)
	}
	return out, nil
}

func (s *SummaryStore) Count(ctx context.Context, userID string) (int, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	err = db.QueryRowContext(ctx, rebind(s.conn.Driver(),
		`SELECT COUNT(*) FROM weekly_summaries WHERE user_id = ?`), userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: counting summaries: %w", err)
	}
	return n, nil
}

func scanSummary(sc scanner) (*model.WeeklySummary, error) {
	var (
		sum              model.WeeklySummary
		start, end       string
		created, updated int64
	)
	if err := sc.Scan(&sum.ID, &sum.UserID, &start, &end, &sum.AvgHours, &sum.EntryCount, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if sum.WeekStartDate, err = parseDate(start); err != nil {
		return nil, fmt.Errorf("summary %s has malformed start date %q: %w", sum.ID, start, err)
	}
	if sum.WeekEndDate, err = parseDate(end); err != nil {
		return nil, fmt.Errorf("summary %s has malformed end date %q: %w", sum.ID, end, err)
	}
	sum.CreatedAt = fromMillis(created)
	sum.UpdatedAt = fromMillis(updated)
	return &sum, nil
}
