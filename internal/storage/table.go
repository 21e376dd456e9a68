package storage

import (
	"iter"
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellBlank CellKind = iota
	CellText
	CellNumber
	CellDate
	CellDuration
)

// Cell is a decoded spreadsheet value. For date and duration cells read from
// a workbook Number keeps the raw Excel serial.
type Cell struct {
	Kind     CellKind
	Text     string
	Number   float64
	Time     time.Time
	Duration time.Duration
}

func Blank() Cell { return Cell{Kind: CellBlank} }

func Text(s string) Cell { return Cell{Kind: CellText, Text: s} }

func Number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

func Date(t time.Time) Cell { return Cell{Kind: CellDate, Time: t} }

func Duration(d time.Duration) Cell { return Cell{Kind: CellDuration, Duration: d} }

// IsBlank reports whether the cell carries no value. Whitespace-only text is blank.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellBlank:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format(time.DateOnly)
		}
		return c.Time.Format(time.DateTime)
	case CellDuration:
		return c.Duration.String()
	}
	return ""
}

// Table is a decoded sheet: header texts plus data rows in sheet order.
// Rows may be shorter than Headers, missing trailing cells are blank.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]Cell
	// HeaderLine is the 1-based source line of the header, 0 when unknown.
	HeaderLine int
}

// Line returns the source line of the data row at index i.
func (t Table) Line(i int) int {
	return max(t.HeaderLine, 1) + i + 1
}

// RowSeq yields the data rows. Every call starts again from the first row.
func (t Table) RowSeq() iter.Seq[[]Cell] {
	return func(yield func([]Cell) bool) {
		for _, row := range t.Rows {
			if !yield(row) {
				return
			}
		}
	}
}
