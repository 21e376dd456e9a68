package generate_excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"trumetrapla/internal/storage"
)

const (
	SheetSummary   = "Riepilogo"
	SheetEmployees = "Dipendenti"
	SheetProcesses = "Processi"
	SheetDaily     = "Andamento"
	SheetGroups    = "Raggruppamento"
	SheetErrors    = "Errori"
)

type GenerateExcelService struct{}

func NewGenerateService() *GenerateExcelService {
	return &GenerateExcelService{}
}

type styles struct {
	header int
	number int
	date   int
}

// GenerateExcel renders a report as an xlsx workbook.
func (g *GenerateExcelService) GenerateExcel(rep storage.Report) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: styles: %w", op, err)
	}

	steps := []func(*excelize.File, styles, storage.Report) error{
		writeSummary,
		keyedSheet(SheetEmployees, "Dipendente", func(r storage.Report) []storage.KeyedSummary { return r.ByEmployee }),
		keyedSheet(SheetProcesses, "Processo", func(r storage.Report) []storage.KeyedSummary { return r.ByProcess }),
		writeDaily,
	}
	if len(rep.ByGroup) > 0 {
		steps = append(steps, keyedSheet(SheetGroups, "Gruppo", func(r storage.Report) []storage.KeyedSummary { return r.ByGroup }))
	}
	steps = append(steps, writeErrors)

	for _, step := range steps {
		if err := step(f, st, rep); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		st  styles
		err error
	)
	st.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return styles{}, err
	}
	// 0.00
	if st.number, err = f.NewStyle(&excelize.Style{NumFmt: 2}); err != nil {
		return styles{}, err
	}
	dateFmt := "dd/mm/yyyy"
	if st.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return styles{}, err
	}
	return st, nil
}

func writeSummary(f *excelize.File, st styles, rep storage.Report) error {
	s := rep.Summary
	rows := [][]any{
		{"Indicatore", "Valore"},
		{"Totale pezzi", s.TotalQuantity},
		{"Ore lavorate", s.TotalHours()},
		{"Produttività media (pezzi/ora)", s.AverageProductivity},
		{"Registrazioni", s.RecordCount},
		{"Dipendenti coinvolti", s.Employees},
		{"Processi analizzati", s.Processes},
		{"Macchine", s.Machines},
		{"Tipologie di processo", s.ProcessTypes},
		{"Righe scartate", len(rep.RowErrors)},
	}
	if err := writeRows(f, SheetSummary, rows, st.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "B3", "B4", st.number); err != nil {
		return err
	}

	// sources under the indicators
	line := len(rows) + 2
	if err := setRow(f, SheetSummary, line, []any{"Fonte", "Righe", "Record", "Scartate"}); err != nil {
		return err
	}
	if err := styleRow(f, SheetSummary, line, 4, st.header); err != nil {
		return err
	}
	for i, src := range rep.Sources {
		if err := setRow(f, SheetSummary, line+1+i, []any{src.Name, src.Rows, src.Records, src.RejectedRows}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 34); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "B", "D", 14)
}

func keyedSheet(sheet, keyHeader string, pick func(storage.Report) []storage.KeyedSummary) func(*excelize.File, styles, storage.Report) error {
	return func(f *excelize.File, st styles, rep storage.Report) error {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		groups := pick(rep)
		rows := make([][]any, 0, len(groups)+1)
		rows = append(rows, []any{keyHeader, "Pezzi", "Ore", "Pezzi/ora", "Registrazioni"})
		for _, g := range groups {
			rows = append(rows, []any{g.Key, g.TotalQuantity, g.TotalHours(), g.AverageProductivity, g.RecordCount})
		}
		if err := writeRows(f, sheet, rows, st.header); err != nil {
			return err
		}
		if len(groups) > 0 {
			if err := f.SetCellStyle(sheet, "C2", cellName(4, len(groups)+1), st.number); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
			return err
		}
		return f.SetColWidth(sheet, "B", "E", 14)
	}
}

func writeDaily(f *excelize.File, st styles, rep storage.Report) error {
	if _, err := f.NewSheet(SheetDaily); err != nil {
		return err
	}
	rows := make([][]any, 0, len(rep.Daily)+1)
	rows = append(rows, []any{"Data", "Pezzi", "Ore", "Pezzi/ora", "Registrazioni"})
	for _, d := range rep.Daily {
		rows = append(rows, []any{d.Date, d.TotalQuantity, d.TotalHours(), d.AverageProductivity, d.RecordCount})
	}
	if err := writeRows(f, SheetDaily, rows, st.header); err != nil {
		return err
	}
	if n := len(rep.Daily); n > 0 {
		if err := f.SetCellStyle(SheetDaily, "A2", cellName(1, n+1), st.date); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetDaily, "C2", cellName(4, n+1), st.number); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetDaily, "A", "E", 14)
}

func writeErrors(f *excelize.File, st styles, rep storage.Report) error {
	if _, err := f.NewSheet(SheetErrors); err != nil {
		return err
	}
	rows := make([][]any, 0, len(rep.RowErrors)+1)
	rows = append(rows, []any{"Fonte", "Riga", "Campo", "Valore", "Motivo"})
	for _, e := range rep.RowErrors {
		rows = append(rows, []any{e.Source, e.Line, e.Field, e.Value, e.Reason})
	}
	if err := writeRows(f, SheetErrors, rows, st.header); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetErrors, "A", "A", 30); err != nil {
		return err
	}
	return f.SetColWidth(SheetErrors, "B", "E", 18)
}

// writeRows writes rows from A1, styles the first one as a header and
// freezes it.
func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := styleRow(f, sheet, 1, len(rows[0]), headerStyle); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(f *excelize.File, sheet string, line int, values []any) error {
	return f.SetSheetRow(sheet, cellName(1, line), &values)
}

func styleRow(f *excelize.File, sheet string, line, width, style int) error {
	return f.SetCellStyle(sheet, cellName(1, line), cellName(width, line), style)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
