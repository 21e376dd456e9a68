package storage

import "time"

// OperationRecord is one production event read from a sheet row.
type OperationRecord struct {
	Date            time.Time `json:"date"`
	Employee        string    `json:"employee"`
	Process         string    `json:"process"`
	Quantity        int       `json:"quantity"`
	DurationMinutes float64   `json:"duration_minutes"`
	Machine         string    `json:"machine,omitempty"`
	ProcessType     string    `json:"process_type,omitempty"`
}

// Hours is the worked time in hours, negative durations count as zero.
func (r OperationRecord) Hours() float64 {
	return max(r.DurationMinutes, 0) / 60
}

// ProductivityPerHour returns pieces per hour, 0 when no time was recorded.
func (r OperationRecord) ProductivityPerHour() float64 {
	if r.DurationMinutes <= 0 {
		return 0
	}
	return float64(r.Quantity) / r.Hours()
}

// Day truncates t to a calendar date at UTC midnight. All record dates go
// through it so that they can be used as map keys.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
