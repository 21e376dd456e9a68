package kpi

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trumetrapla/internal/service/columns"
	"trumetrapla/internal/storage"
)

var (
	ErrNoGroupFields     = errors.New("at least one field is required for grouping")
	ErrNotGroupableField = errors.New("field cannot be used for grouping")
)

const labelSeparator = " • "

// GroupByAttributes sums records per combination of the given fields. Each
// key reads "Label: value • Label: value" in field order; labels default to
// the title-cased field name and blank values print as "-". The result is
// sorted by total quantity, highest first, then by key.
func GroupByAttributes(records []storage.OperationRecord, fields []columns.Field, labels map[columns.Field]string) ([]storage.KeyedSummary, error) {
	const op = "kpi.GroupByAttributes"

	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoGroupFields)
	}
	for _, f := range fields {
		if !groupable(f) {
			return nil, fmt.Errorf("%s: %s: %w", op, f, ErrNotGroupableField)
		}
	}

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = label(f, labels)
	}

	type group struct {
		key   string
		label string
		acc   accumulator
	}
	// keyed by raw values: a blank machine and a literal "-" are different groups
	groups := make(map[string]*group)
	var raw, parts []string
	for _, r := range records {
		raw, parts = raw[:0], parts[:0]
		for i, f := range fields {
			v := attribute(r, f)
			raw = append(raw, v)
			parts = append(parts, names[i]+": "+display(v))
		}
		k := strings.Join(raw, "\x00")

		g, ok := groups[k]
		if !ok {
			g = &group{key: k, label: strings.Join(parts, labelSeparator)}
			groups[k] = g
		}
		g.acc.add(r)
	}

	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	slices.SortFunc(sorted, func(a, b *group) int {
		if c := cmp.Compare(b.acc.quantity, a.acc.quantity); c != 0 {
			return c
		}
		if c := cmp.Compare(a.label, b.label); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	out := make([]storage.KeyedSummary, 0, len(sorted))
	for _, g := range sorted {
		out = append(out, storage.KeyedSummary{Key: g.label, GroupSummary: g.acc.summary()})
	}
	return out, nil
}

func groupable(f columns.Field) bool {
	switch f {
	case columns.Date, columns.Employee, columns.Process, columns.Machine, columns.ProcessType:
		return true
	}
	return false
}

var titler = cases.Title(language.Italian)

func label(f columns.Field, labels map[columns.Field]string) string {
	if l := strings.TrimSpace(labels[f]); l != "" {
		return l
	}
	return titler.String(strings.ReplaceAll(f.String(), "_", " "))
}

func attribute(r storage.OperationRecord, f columns.Field) string {
	var v string
	switch f {
	case columns.Date:
		if !r.Date.IsZero() {
			v = r.Date.Format(time.DateOnly)
		}
	case columns.Employee:
		v = r.Employee
	case columns.Process:
		v = r.Process
	case columns.Machine:
		v = r.Machine
	case columns.ProcessType:
		v = r.ProcessType
	}
	return v
}

func display(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
