package model

// EntryPage is one page of a user's sleep history, newest first.
type EntryPage struct {
	SleepEntries []SleepEntry `json:"sleepEntries"`
	TotalEntries int          `json:"totalEntries"`
	TotalPages   int          `json:"totalPages"`
	CurrentPage  int          `json:"currentPage"`
}

// SummaryPage is one page of weekly summaries, latest week first.
type SummaryPage struct {
	SummaryEntries []WeeklySummary `json:"summaryEntries"`
	TotalEntries   int             `json:"totalEntries"`
	TotalPages     int             `json:"totalPages"`
	CurrentPage    int             `json:"currentPage"`
}

// TotalPages is ceil(total/limit), and 0 for an empty set.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
