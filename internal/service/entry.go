package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/apperror"
	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/repository"
)

const (
	DefaultEntryLimit = 50
	MaxListLimit      = 100
)

// ListQuery is a page request over a user's entries. Zero Page and Limit
// take the defaults; StartDate and EndDate are optional inclusive bounds.
type ListQuery struct {
	Page      int
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
}

// EntryService is the per-user sleep entry store.
type EntryService struct {
	entries repository.EntryRepository
	now     Clock
	logger  *zap.Logger
}

func NewEntryService(entries repository.EntryRepository, now Clock, logger *zap.Logger) *EntryService {
	return &EntryService{
		entries: entries,
		now:     clockOrDefault(now),
		logger:  logger,
	}
}

// List returns one page of entries, newest date first.
func (s *EntryService) List(ctx context.Context, userID string, q ListQuery) (*model.EntryPage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	page, limit, err := pageParams(q.Page, q.Limit, DefaultEntryLimit)
	if err != nil {
		return nil, err
	}

	r := repository.DateRange{}
	if q.StartDate != nil {
		from := calendarDate(*q.StartDate)
		r.From = &from
	}
	if q.EndDate != nil {
		to := calendarDate(*q.EndDate)
		r.To = &to
	}

	entries, err := s.entries.List(ctx, userID, r, repository.ListOptions{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}
	total, err := s.entries.Count(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	return &model.EntryPage{
		SleepEntries: entries,
		TotalEntries: total,
		TotalPages:   model.TotalPages(total, limit),
		CurrentPage:  page,
	}, nil
}

// GetByDate returns (nil, nil) when the user has no entry for date's calendar day.
func (s *EntryService) GetByDate(ctx context.Context, userID string, date time.Time) (*model.SleepEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.entries.GetByDate(ctx, userID, calendarDate(date))
}

// Upsert validates raw and writes it as the user's entry for its date,
// replacing whatever was recorded for that date before.
func (s *EntryService) Upsert(ctx context.Context, userID string, raw model.RawEntry) (*model.SleepEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	prepared, err := PrepareEntry(raw)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.Upsert(ctx, userID, prepared, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("sleep entry saved",
		zap.String("user_id", userID),
		zap.Time("entry_date", entry.EntryDate),
		zap.Int("duration", entry.Duration),
	)
	return entry, nil
}

// DeleteByDate returns the removed entry, or (nil, nil) if there was none.
func (s *EntryService) DeleteByDate(ctx context.Context, userID string, date time.Time) (*model.SleepEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.entries.DeleteByDate(ctx, userID, calendarDate(date))
}

func requireUser(userID string) error {
	if userID == "" {
		return apperror.InvalidArgument("userId", "user id is required")
	}
	return nil
}

// pageParams applies defaults and rejects out-of-range values. The page is
// bounded so that the row offset (page-1)*limit stays within 32 bits and can
// never wrap negative.
func pageParams(page, limit, defaultLimit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if page < 1 {
		return 0, 0, apperror.ValidationFailed("page", "Page must be a positive number")
	}
	if limit < 1 || limit > MaxListLimit {
		return 0, 0, apperror.ValidationFailed("limit", "Limit must be between 1 and 100")
	}
	if page-1 > math.MaxInt32/limit {
		return 0, 0, apperror.ValidationFailed("page", "Page is out of range")
	}
	return page, limit, nil
}
