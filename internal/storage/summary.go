package storage

import "time"

type GroupSummary struct {
	TotalQuantity        int     `json:"total_quantity"`
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	RecordCount          int     `json:"record_count"`
	AverageProductivity  float64 `json:"average_productivity"`
}

// TotalHours is the worked time of the group in hours.
func (g GroupSummary) TotalHours() float64 {
	return g.TotalDurationMinutes / 60
}

// KeyedSummary is a group summary for one employee, process or composite key.
type KeyedSummary struct {
	Key string `json:"key"`
	GroupSummary
}

type DailySummary struct {
	Date time.Time `json:"date"`
	GroupSummary
}

type OverallSummary struct {
	GroupSummary
	Employees    int `json:"employees"`
	Processes    int `json:"processes"`
	Machines     int `json:"machines"`
	ProcessTypes int `json:"process_types"`
}
