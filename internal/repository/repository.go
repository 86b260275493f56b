// Package repository declares the storage contracts the services depend on.
//
// Lookups that find nothing return (nil, nil). A miss is an ordinary outcome
// for the callers here (the HTTP layer turns it into a 404), so it is not
// modelled as an error. Every write is a single atomic statement; there is no
// read-then-write anywhere behind these interfaces.
package repository

import (
	"context"
	"time"

	"github.com/sakif/alive-sleep/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// DateRange bounds entry dates inclusively. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type UserRepository interface {
	// GetOrCreate inserts a user for authIDHash, or bumps last_login_at and
	// updated_at to now when one already exists.
	GetOrCreate(ctx context.Context, authIDHash string, now time.Time) (*model.User, error)
	FindByHash(ctx context.Context, authIDHash string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	ListIDs(ctx context.Context) ([]string, error)
}

type EntryRepository interface {
	List(ctx context.Context, userID string, r DateRange, opts ListOptions) ([]model.SleepEntry, error)
	Count(ctx context.Context, userID string, r DateRange) (int, error)
	// InRange returns every entry in r, oldest first.
	InRange(ctx context.Context, userID string, r DateRange) ([]model.SleepEntry, error)
	GetByDate(ctx context.Context, userID string, date time.Time) (*model.SleepEntry, error)
	// Upsert writes key fields only on insert and overwrites every data field
	// (duration, start, end, rating) on each call.
	Upsert(ctx context.Context, userID string, e *model.NormalizedEntry, now time.Time) (*model.SleepEntry, error)
	DeleteByDate(ctx context.Context, userID string, date time.Time) (*model.SleepEntry, error)
}

type SummaryRepository interface {
	// Upsert is keyed by (UserID, WeekEndDate).
	Upsert(ctx context.Context, s *model.WeeklySummary, now time.Time) (*model.WeeklySummary, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]model.WeeklySummary, error)
	Count(ctx context.Context, userID string) (int, error)
}
