package model

import "time"

// WeeklySummary is the average nightly sleep for one Monday..Sunday week.
// One row per (UserID, WeekEndDate); recomputing overwrites it.
type WeeklySummary struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	WeekStartDate time.Time `json:"weekStartDate"` // Monday, midnight UTC
	WeekEndDate   time.Time `json:"weekEndDate"`   // Sunday, midnight UTC
	AvgHours      float64   `json:"avgHours"`
	EntryCount    int       `json:"entryCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
