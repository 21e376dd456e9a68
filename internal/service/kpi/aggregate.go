package kpi

import (
	"cmp"
	"slices"
	"time"

	"trumetrapla/internal/storage"
)

// accumulator sums one group. Minutes are kept as given so that the
// productivity of a group is computed once from its totals.
type accumulator struct {
	quantity int
	minutes  float64
	count    int
}

func (a *accumulator) add(r storage.OperationRecord) {
	a.quantity += r.Quantity
	a.minutes += max(r.DurationMinutes, 0)
	a.count++
}

func (a accumulator) summary() storage.GroupSummary {
	return storage.GroupSummary{
		TotalQuantity:        a.quantity,
		TotalDurationMinutes: a.minutes,
		RecordCount:          a.count,
		AverageProductivity:  productivity(a.quantity, a.minutes),
	}
}

// productivity is pieces per hour, 0 when no time was recorded.
func productivity(quantity int, minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	return float64(quantity) / (minutes / 60)
}

// Summarize computes the totals over all records plus the number of distinct
// employees, processes, machines and process types. Blank machine and process
// type values are not counted.
func Summarize(records []storage.OperationRecord) storage.OverallSummary {
	var (
		acc          accumulator
		employees    = make(map[string]struct{})
		processes    = make(map[string]struct{})
		machines     = make(map[string]struct{})
		processTypes = make(map[string]struct{})
	)
	for _, r := range records {
		acc.add(r)
		employees[r.Employee] = struct{}{}
		processes[r.Process] = struct{}{}
		if r.Machine != "" {
			machines[r.Machine] = struct{}{}
		}
		if r.ProcessType != "" {
			processTypes[r.ProcessType] = struct{}{}
		}
	}

	return storage.OverallSummary{
		GroupSummary: acc.summary(),
		Employees:    len(employees),
		Processes:    len(processes),
		Machines:     len(machines),
		ProcessTypes: len(processTypes),
	}
}

// GroupByEmployee sums records per employee. The result is sorted by average
// productivity, highest first, then by employee name.
func GroupByEmployee(records []storage.OperationRecord) []storage.KeyedSummary {
	return groupBy(records, func(r storage.OperationRecord) string { return r.Employee })
}

// GroupByProcess is GroupByEmployee keyed by process.
func GroupByProcess(records []storage.OperationRecord) []storage.KeyedSummary {
	return groupBy(records, func(r storage.OperationRecord) string { return r.Process })
}

func groupBy(records []storage.OperationRecord, key func(storage.OperationRecord) string) []storage.KeyedSummary {
	groups := make(map[string]*accumulator)
	for _, r := range records {
		k := key(r)
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{}
			groups[k] = acc
		}
		acc.add(r)
	}

	out := make([]storage.KeyedSummary, 0, len(groups))
	for k, acc := range groups {
		out = append(out, storage.KeyedSummary{Key: k, GroupSummary: acc.summary()})
	}
	slices.SortStableFunc(out, byProductivity)
	return out
}

func byProductivity(a, b storage.KeyedSummary) int {
	if c := cmp.Compare(b.AverageProductivity, a.AverageProductivity); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}

// DailyTrend sums records per calendar day in chronological order.
func DailyTrend(records []storage.OperationRecord) []storage.DailySummary {
	groups := make(map[time.Time]*accumulator)
	for _, r := range records {
		d := storage.Day(r.Date)
		acc, ok := groups[d]
		if !ok {
			acc = &accumulator{}
			groups[d] = acc
		}
		acc.add(r)
	}

	out := make([]storage.DailySummary, 0, len(groups))
	for d, acc := range groups {
		out = append(out, storage.DailySummary{Date: d, GroupSummary: acc.summary()})
	}
	slices.SortFunc(out, func(a, b storage.DailySummary) int {
		return a.Date.Compare(b.Date)
	})
	return out
}
