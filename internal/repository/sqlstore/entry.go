package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/repository"
)

var _ repository.EntryRepository = (*EntryStore)(nil)

type EntryStore struct {
	conn *Connector
}

const entryColumns = `id, user_id, entry_date, duration, start_time, end_time, rating, created_at, updated_at`

// whereRange builds the shared "owner plus optional inclusive date bounds"
// clause. Dates are YYYY-MM-DD text, so string comparison is date comparison.
func whereRange(userID string, r repository.DateRange) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{userID}
	if r.From != nil {
		conds = append(conds, "entry_date >= ?")
		args = append(args, formatDate(*r.From))
	}
	if r.To != nil {
		conds = append(conds, "entry_date <= ?")
		args = append(args, formatDate(*r.To))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *EntryStore) List(ctx context.Context, userID string, r repository.DateRange, opts repository.ListOptions) ([]model.SleepEntry, error) {
	where, args := whereRange(userID, r)
	args = append(args, opts.Limit, opts.Offset)
	return s.query(ctx, `SELECT `+entryColumns+` FROM sleep_entries`+where+
		` ORDER BY entry_date DESC LIMIT ? OFFSET ?`, args...)
}

func (s *EntryStore) InRange(ctx context.Context, userID string, r repository.DateRange) ([]model.SleepEntry, error) {
	where, args := whereRange(userID, r)
	return s.query(ctx, `SELECT `+entryColumns+` FROM sleep_entries`+where+` ORDER BY entry_date`, args...)
}

func (s *EntryStore) Count(ctx context.Context, userID string, r repository.DateRange) (int, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return 0, err
	}

	where, args := whereRange(userID, r)
	var n int
	err = db.QueryRowContext(ctx, rebind(s.conn.Driver(), `SELECT COUNT(*) FROM sleep_entries`+where), args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: counting entries: %w", err)
	}
	return n, nil
}

func (s *EntryStore) GetByDate(ctx context.Context, userID string, date time.Time) (*model.SleepEntry, error) {
	return s.one(ctx, "getting entry", `SELECT `+entryColumns+` FROM sleep_entries
		WHERE user_id = ? AND entry_date = ?`, userID, formatDate(date))
}

// Upsert keys on (user_id, entry_date). id, user_id, entry_date and
// created_at come from the INSERT branch only. Data columns are replaced
// wholesale, so a resubmission without start/end clears them.
func (s *EntryStore) Upsert(ctx context.Context, userID string, e *model.NormalizedEntry, now time.Time) (*model.SleepEntry, error) {
	ms := toMillis(now)
	return s.one(ctx, "upserting entry", `
		INSERT INTO sleep_entries (id, user_id, entry_date, duration, start_time, end_time, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, entry_date) DO UPDATE SET
			duration   = excluded.duration,
			start_time = excluded.start_time,
			end_time   = excluded.end_time,
			rating     = excluded.rating,
			updated_at = excluded.updated_at
		RETURNING `+entryColumns,
		xid.New().String(), userID, formatDate(e.EntryDate), e.Duration,
		nullMillis(e.StartTime), nullMillis(e.EndTime), nullInt(e.Rating), ms, ms,
	)
}

// DeleteByDate returns the removed row, or nil when there was none.
func (s *EntryStore) DeleteByDate(ctx context.Context, userID string, date time.Time) (*model.SleepEntry, error) {
	return s.one(ctx, "deleting entry", `DELETE FROM sleep_entries
		WHERE user_id = ? AND entry_date = ?
		RETURNING `+entryColumns, userID, formatDate(date))
}

func (s *EntryStore) one(ctx context.Context, op, query string, args ...any) (*model.SleepEntry, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	e, err := scanEntry(db.QueryRowContext(ctx, rebind(s.conn.Driver(), query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: %s: %w", op, err)
	}
	return e, nil
}

func (s *EntryStore) query(ctx context.Context, query string, args ...any) ([]model.SleepEntry, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, rebind(s.conn.Driver(), query), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.SleepEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: scanning entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating entries: %w", err)
	}
	return entries, nil
}

func scanEntry(sc scanner) (*model.SleepEntry, error) {
	var (
		e                model.SleepEntry
		date             string
		start, end       sql.NullInt64
		rating           sql.NullInt64
		created, updated int64
	)
	if err := sc.Scan(&e.ID, &e.UserID, &date, &e.Duration, &start, &end, &rating, &created, &updated); err != nil {
		return nil, err
	}

	d, err := parseDate(date)
	if err != nil {
		return nil, fmt.Errorf("entry %s has malformed date %q: %w", e.ID, date, err)
	}
	e.EntryDate = d
	if start.Valid {
		t := fromMillis(start.Int64)
		e.StartTime = &t
	}
	if end.Valid {
		t := fromMillis(end.Int64)
		e.EndTime = &t
	}
	if rating.Valid {
		r := int(rating.Int64)
		e.Rating = &r
	}
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return &e, nil
}
