package loader

import (
	"fmt"
	"iter"
	"strings"

	"trumetrapla/internal/service/columns"
	"trumetrapla/internal/storage"
)

// RecordValidationError reports a data row whose mandatory value could not
// be converted. Loading goes on after it.
type RecordValidationError struct {
	// Row is the 0-based position among the data rows, header excluded.
	Row    int
	Field  columns.Field
	Value  string
	Reason string

	err error
}

func (e *RecordValidationError) Error() string {
	return fmt.Sprintf("data row %d: %s %q: %s", e.Row+1, e.Field, e.Value, e.Reason)
}

func (e *RecordValidationError) Unwrap() error {
	return e.err
}

// Load turns rows into operation records using the resolved mapping.
//
// The sequence is lazy and holds no state between iterations: ranging over
// it again reads rows from the start. Every element is either a record with
// a nil error or a validation error for that row. Blank rows and rows
// without date, employee or process are skipped without an error.
func Load(rows iter.Seq[[]storage.Cell], m columns.Mapping) iter.Seq2[storage.OperationRecord, *RecordValidationError] {
	return func(yield func(storage.OperationRecord, *RecordValidationError) bool) {
		i := -1
		for row := range rows {
			i++
			rec, verr, skip := loadRow(i, row, m)
			if skip {
				continue
			}
			if !yield(rec, verr) {
				return
			}
		}
	}
}

// Collect drains a Load sequence.
func Collect(seq iter.Seq2[storage.OperationRecord, *RecordValidationError]) ([]storage.OperationRecord, []*RecordValidationError) {
	var (
		records []storage.OperationRecord
		errs    []*RecordValidationError
	)
	for rec, verr := range seq {
		if verr != nil {
			errs = append(errs, verr)
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

func loadRow(i int, row []storage.Cell, m columns.Mapping) (storage.OperationRecord, *RecordValidationError, bool) {
	if isBlankRow(row) {
		return storage.OperationRecord{}, nil, true
	}

	dateCell := cell(row, m, columns.Date)
	employee := text(cell(row, m, columns.Employee))
	process := text(cell(row, m, columns.Process))
	if dateCell.IsBlank() || employee == "" || process == "" {
		return storage.OperationRecord{}, nil, true
	}

	invalid := func(f columns.Field, c storage.Cell, err error) *RecordValidationError {
		return &RecordValidationError{Row: i, Field: f, Value: c.String(), Reason: err.Error(), err: err}
	}

	date, err := coerceDate(dateCell)
	if err != nil {
		return storage.OperationRecord{}, invalid(columns.Date, dateCell, err), false
	}

	qtyCell := cell(row, m, columns.Quantity)
	quantity, err := coerceQuantity(qtyCell)
	if err != nil {
		return storage.OperationRecord{}, invalid(columns.Quantity, qtyCell, err), false
	}

	durCell := cell(row, m, columns.DurationMinutes)
	minutes, err := coerceDuration(durCell)
	if err != nil {
		return storage.OperationRecord{}, invalid(columns.DurationMinutes, durCell, err), false
	}

	return storage.OperationRecord{
		Date:            date,
		Employee:        employee,
		Process:         process,
		Quantity:        quantity,
		DurationMinutes: minutes,
		Machine:         text(cell(row, m, columns.Machine)),
		ProcessType:     text(cell(row, m, columns.ProcessType)),
	}, nil, false
}

func cell(row []storage.Cell, m columns.Mapping, f columns.Field) storage.Cell {
	col, ok := m.Column(f)
	if !ok || col >= len(row) {
		return storage.Blank()
	}
	return row[col]
}

// text renders a label cell. Whole numbers lose their ".0" so that an
// employee badge number 1042 stays "1042".
func text(c storage.Cell) string {
	if c.IsBlank() {
		return ""
	}
	return strings.TrimSpace(c.String())
}

func isBlankRow(row []storage.Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
