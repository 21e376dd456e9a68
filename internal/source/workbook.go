package source

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"trumetrapla/internal/storage"
)

// Sheets lists the sheet names of a workbook in tab order.
func Sheets(r io.Reader) ([]string, error) {
	const op = "source.Sheets"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnreadable, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// ReadWorkbook decodes one sheet of an xlsx workbook. The first non-empty row
// is the header. Numbers formatted as dates become date cells and numbers
// formatted as times become duration cells.
func ReadWorkbook(r io.Reader, name, sheet string) (storage.Table, error) {
	const op = "source.ReadWorkbook"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return storage.Table{}, fmt.Errorf("%s: %w: %w", op, ErrUnreadable, err)
	}
	defer f.Close()

	sheetName, err := selectSheet(f.GetSheetList(), sheet)
	if err != nil {
		return storage.Table{}, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return storage.Table{}, fmt.Errorf("%s: failed to read sheet %q: %w", op, sheetName, err)
	}

	header := headerIndex(raw)
	if header < 0 {
		return storage.Table{}, fmt.Errorf("%s: sheet %q: %w", op, sheetName, ErrNoHeader)
	}

	headers := make([]string, len(raw[header]))
	for i, h := range raw[header] {
		headers[i] = strings.TrimSpace(h)
	}

	d := decoder{f: f, sheet: sheetName, formats: make(map[int]formatKind)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}

	rows := make([][]storage.Cell, 0, len(raw)-header-1)
	for i := header + 1; i < len(raw); i++ {
		cells := make([]storage.Cell, len(raw[i]))
		for j, v := range raw[i] {
			c, err := d.cell(j, i, v)
			if err != nil {
				return storage.Table{}, fmt.Errorf("%s: sheet %q: %w", op, sheetName, err)
			}
			cells[j] = c
		}
		rows = append(rows, cells)
	}

	return storage.Table{
		Name:       tableName(name, sheetName),
		Headers:    headers,
		Rows:       rows,
		HeaderLine: header + 1,
	}, nil
}

func tableName(file, sheet string) string {
	if file == "" {
		return sheet
	}
	return file + " [" + sheet + "]"
}

// selectSheet accepts a sheet name, a 0-based index or "" for the first one.
func selectSheet(sheets []string, sheet string) (string, error) {
	if len(sheets) == 0 {
		return "", ErrSheetNotFound
	}
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == sheet {
			return s, nil
		}
	}
	for _, s := range sheets {
		if strings.EqualFold(s, sheet) {
			return s, nil
		}
	}
	if i, err := strconv.Atoi(sheet); err == nil && i >= 0 && i < len(sheets) {
		return sheets[i], nil
	}
	return "", fmt.Errorf("%q: %w (available: %s)", sheet, ErrSheetNotFound, strings.Join(sheets, ", "))
}

type formatKind int

const (
	formatGeneral formatKind = iota
	formatDate
	formatClock
	formatElapsed
)

type decoder struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	// number format kind by style index
	formats map[int]formatKind
}

func (d *decoder) cell(col, row int, v string) (storage.Cell, error) {
	if strings.TrimSpace(v) == "" {
		return storage.Blank(), nil
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return storage.Cell{}, err
	}
	typ, err := d.f.GetCellType(d.sheet, axis)
	if err != nil {
		return storage.Cell{}, fmt.Errorf("cell %s: %w", axis, err)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", time.DateOnly} {
			if t, err := time.Parse(layout, v); err == nil {
				return storage.Date(t), nil
			}
		}
		return storage.Text(v), nil
	default:
		return storage.Text(v), nil
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return storage.Text(v), nil
	}

	kind, err := d.format(axis)
	if err != nil {
		return storage.Cell{}, fmt.Errorf("cell %s: %w", axis, err)
	}

	switch kind {
	case formatDate:
		t, err := excelize.ExcelDateToTime(n, d.date1904)
		if err != nil {
			return storage.Number(n), nil
		}
		c := storage.Date(t)
		c.Number = n
		return c, nil
	case formatClock:
		_, frac := math.Modf(n)
		c := storage.Duration(serialDuration(frac))
		c.Number = frac
		return c, nil
	case formatElapsed:
		c := storage.Duration(serialDuration(n))
		c.Number = n
		return c, nil
	}
	return storage.Number(n), nil
}

func serialDuration(days float64) time.Duration {
	return time.Duration(math.Round(days * 24 * float64(time.Hour) / float64(time.Second))) * time.Second
}

func (d *decoder) format(axis string) (formatKind, error) {
	idx, err := d.f.GetCellStyle(d.sheet, axis)
	if err != nil {
		return formatGeneral, err
	}
	if kind, ok := d.formats[idx]; ok {
		return kind, nil
	}

	kind := formatGeneral
	if idx != 0 {
		style, err := d.f.GetStyle(idx)
		if err != nil {
			return formatGeneral, err
		}
		if style.CustomNumFmt != nil && *style.CustomNumFmt != "" {
			kind = classifyFormat(*style.CustomNumFmt)
		} else {
			kind = builtinFormat(style.NumFmt)
		}
	}
	d.formats[idx] = kind
	return kind, nil
}

func builtinFormat(id int) formatKind {
	switch {
	case id >= 14 && id <= 17, id == 22, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return formatDate
	case id == 46:
		return formatElapsed
	case id >= 18 && id <= 21, id == 45, id == 47:
		return formatClock
	}
	return formatGeneral
}

var (
	quotedLiteral = regexp.MustCompile(`"[^"]*"|\\.`)
	bracketed     = regexp.MustCompile(`\[[^\]]*\]`)
	elapsedToken  = regexp.MustCompile(`\[(h+|m+|s+)\]`)
)

// classifyFormat inspects a custom number format code such as "dd/mm/yyyy",
// "[h]:mm" or "#,##0.00".
func classifyFormat(code string) formatKind {
	code = strings.ToLower(code)
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}
	code = quotedLiteral.ReplaceAllString(code, "")

	elapsed := elapsedToken.MatchString(code)
	code = bracketed.ReplaceAllString(code, "")

	switch {
	case elapsed:
		return formatElapsed
	case strings.ContainsAny(code, "yd"):
		return formatDate
	case strings.ContainsAny(code, "hs"):
		return formatClock
	case strings.Contains(code, "m") && !strings.ContainsAny(code, "#0?"):
		// month-only formats like "mmm"
		return formatDate
	}
	return formatGeneral
}
