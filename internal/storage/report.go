package storage

import "time"

type Report struct {
	ID          string           `json:"id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Sources     []ReportSource   `json:"sources"`
	Summary     OverallSummary   `json:"summary"`
	ByEmployee  []KeyedSummary   `json:"by_employee"`
	ByProcess   []KeyedSummary   `json:"by_process"`
	Daily       []DailySummary   `json:"daily"`
	ByGroup     []KeyedSummary   `json:"by_group,omitempty"`
	RowErrors   []ReportRowError `json:"row_errors"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// ReportSource describes one imported sheet and the columns used for it.
type ReportSource struct {
	Name         string            `json:"name"`
	Columns      map[string]string `json:"columns"`
	Rows         int               `json:"rows"`
	Records      int               `json:"records"`
	RejectedRows int               `json:"rejected_rows"`
}

type ReportRowError struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}
