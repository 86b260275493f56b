package model

import "time"

// MaxSleepMinutes bounds a single night's duration.
const MaxSleepMinutes = 24 * 60

// SleepEntry is one night of sleep. (UserID, EntryDate) is unique: a second
// submission for the same calendar date updates the existing row.
//
// EntryDate is always midnight UTC. StartTime and EndTime are either both set
// or both nil.
type SleepEntry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	EntryDate time.Time  `json:"entryDate"`
	Duration  int        `json:"duration"` // minutes, 1..1440
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Rating    *int       `json:"rating"` // 0..10, null when not given
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// RawEntry is a submission as it arrives over the wire, before validation.
// Pointer fields distinguish "absent" from zero.
type RawEntry struct {
	EntryTime string  `json:"entryTime"`
	Duration  *int    `json:"duration,omitempty"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	Rating    *int    `json:"rating,omitempty"`
}

// NormalizedEntry is what the validator hands to the store.
type NormalizedEntry struct {
	EntryDate time.Time
	Duration  int
	StartTime *time.Time
	EndTime   *time.Time
	Rating    *int
}
