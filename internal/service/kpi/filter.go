package kpi

import (
	"time"

	"trumetrapla/internal/storage"
)

// Criteria selects records. Empty strings and zero dates match everything;
// From and To are inclusive calendar days.
type Criteria struct {
	Employee    string    `json:"employee,omitempty"`
	Process     string    `json:"process,omitempty"`
	Machine     string    `json:"machine,omitempty"`
	ProcessType string    `json:"process_type,omitempty"`
	From        time.Time `json:"from,omitempty"`
	To          time.Time `json:"to,omitempty"`
}

func (c Criteria) IsZero() bool {
	return c.Employee == "" && c.Process == "" && c.Machine == "" && c.ProcessType == "" &&
		c.From.IsZero() && c.To.IsZero()
}

func (c Criteria) Match(r storage.OperationRecord) bool {
	switch {
	case c.Employee != "" && r.Employee != c.Employee:
		return false
	case c.Process != "" && r.Process != c.Process:
		return false
	case c.Machine != "" && r.Machine != c.Machine:
		return false
	case c.ProcessType != "" && r.ProcessType != c.ProcessType:
		return false
	}

	day := storage.Day(r.Date)
	if !c.From.IsZero() && day.Before(storage.Day(c.From)) {
		return false
	}
	if !c.To.IsZero() && day.After(storage.Day(c.To)) {
		return false
	}
	return true
}

// Filter returns the records matching c in their original order. The input
// slice is not modified.
func Filter(records []storage.OperationRecord, c Criteria) []storage.OperationRecord {
	if c.IsZero() {
		return records
	}
	out := make([]storage.OperationRecord, 0, len(records))
	for _, r := range records {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
