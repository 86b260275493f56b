package service

import (
	"math"
	"strings"
	"time"

	"github.com/sakif/alive-sleep/internal/apperror"
	"github.com/sakif/alive-sleep/internal/model"
)

const (
	MinRating = 0
	MaxRating = 10
)

// Validation messages. Clients display these verbatim.
const (
	msgEntryDateRequired = "Entry date is required"
	msgEntryDateInvalid  = "Entry date must be valid"
	msgRatingRange       = "Rating must be a number between 0 and 10"
	msgNeedDurationOrAll = "Either sleep duration or both start and end time must be provided"
	msgNeedBothTimes     = "Both start and end time must be provided"
	msgStartInvalid      = "Start time must be a valid date"
	msgEndInvalid        = "End time must be a valid date"
	msgStartDateMismatch = "Start date must match entry date"
	msgStartAfterEnd     = "Start time must be earlier than end time"
	msgSpanTooLong       = "End time cannot be more than 24 hours after start time"
	msgDurationTooLong   = "Sleep duration cannot exceed 24 hours"
	msgDurationNegative  = "Sleep duration cannot be negative"
	msgDurationMissing   = "Please provide a valid sleep duration or start and end time"
)

// Layouts accepted for dates and timestamps, tried in order. Inputs without
// a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTime parses a date or timestamp in any of the accepted layouts.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses s and truncates it to midnight UTC of its calendar date.
// The calendar date is the one written in s, whatever its offset.
func ParseDate(s string) (time.Time, bool) {
	t, ok := ParseTime(s)
	if !ok {
		return time.Time{}, false
	}
	return calendarDate(t), true
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PrepareEntry validates a raw submission and normalizes it for storage.
// It is pure. Checks run in a fixed order and the first failure wins:
//
//  1. entryTime present and parseable
//  2. rating, when given, within 0..10
//  3. a duration, or both startTime and endTime
//  4. with start/end: both parse, start falls on the entry date, start < end,
//     and the span is at most 24h. The rounded span then replaces any
//     supplied duration.
//  5. the final duration lies in 1..1440
func PrepareEntry(raw model.RawEntry) (*model.NormalizedEntry, error) {
	if strings.TrimSpace(raw.EntryTime) == "" {
		return nil, apperror.ValidationFailed("entryTime", msgEntryDateRequired)
	}
	entryDate, ok := ParseDate(raw.EntryTime)
	if !ok {
		return nil, apperror.ValidationFailed("entryTime", msgEntryDateInvalid)
	}

	if raw.Rating != nil && (*raw.Rating < MinRating || *raw.Rating > MaxRating) {
		return nil, apperror.ValidationFailed("rating", msgRatingRange)
	}

	hasDuration := raw.Duration != nil
	hasStart, hasEnd := raw.StartTime != nil, raw.EndTime != nil
	if !hasDuration && !(hasStart && hasEnd) {
		return nil, apperror.ValidationFailed("duration", msgNeedDurationOrAll)
	}
	if hasStart != hasEnd {
		return nil, apperror.ValidationFailed("startTime", msgNeedBothTimes)
	}

	out := &model.NormalizedEntry{
		EntryDate: entryDate,
		Rating:    raw.Rating,
	}
	if hasDuration {
		out.Duration = *raw.Duration
	}

	if hasStart && hasEnd {
		start, ok := ParseTime(*raw.StartTime)
		if !ok {
			return nil, apperror.ValidationFailed("startTime", msgStartInvalid)
		}
		end, ok := ParseTime(*raw.EndTime)
		if !ok {
			return nil, apperror.ValidationFailed("endTime", msgEndInvalid)
		}
		if !calendarDate(start).Equal(entryDate) {
			return nil, apperror.ValidationFailed("startTime", msgStartDateMismatch)
		}
		if !start.Before(end) {
			return nil, apperror.ValidationFailed("startTime", msgStartAfterEnd)
		}
		span := end.Sub(start)
		if span > 24*time.Hour {
			return nil, apperror.ValidationFailed("endTime", msgSpanTooLong)
		}

		out.Duration = int(math.Round(span.Minutes()))
		start, end = start.UTC(), end.UTC()
		out.StartTime, out.EndTime = &start, &end
	}

	switch {
	case out.Duration > model.MaxSleepMinutes:
		return nil, apperror.ValidationFailed("duration", msgDurationTooLong)
	case out.Duration < 0:
		return nil, apperror.ValidationFailed("duration", msgDurationNegative)
	case out.Duration == 0:
		return nil, apperror.ValidationFailed("duration", msgDurationMissing)
	}
	return out, nil
}
