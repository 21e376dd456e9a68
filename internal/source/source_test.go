package source

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trumetrapla/internal/storage"
)

func buildWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	clockStyle, err := f.NewStyle(&excelize.Style{NumFmt: 20})
	require.NoError(t, err)
	elapsedFmt := "[h]:mm"
	elapsedStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &elapsedFmt})
	require.NoError(t, err)

	// two empty rows above the header
	rows := [][]any{
		{"Data", "Operatore", "Reparto", "Pezzi prodotti", "Minuti"},
		{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "Rossi", "Taglio", 100, 0.0625},
		{"03/01/2024", "1042", "Taglio", "N/D", 1.5},
		{},
		{45295, "Bianchi", "Piega", 12.5, 30},
	}
	for i, row := range rows {
		for j, v := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+3)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, axis, v))
		}
	}
	require.NoError(t, f.SetCellStyle(sheet, "A4", "A4", dateStyle))
	require.NoError(t, f.SetCellStyle(sheet, "E4", "E4", clockStyle))
	require.NoError(t, f.SetCellStyle(sheet, "E5", "E5", elapsedStyle))

	_, err = f.NewSheet("Turni")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Turni", "A1", &[]any{"Giorno", "Addetto"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadWorkbook(t *testing.T) {
	buf := buildWorkbook(t)

	table, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), "turni.xlsx", "")
	require.NoError(t, err)

	assert.Equal(t, "turni.xlsx [Sheet1]", table.Name)
	assert.Equal(t, []string{"Data", "Operatore", "Reparto", "Pezzi prodotti", "Minuti"}, table.Headers)
	assert.Equal(t, 3, table.HeaderLine)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, 4, table.Line(0))

	first := table.Rows[0]
	require.Len(t, first, 5)
	assert.Equal(t, storage.CellDate, first[0].Kind)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), storage.Day(first[0].Time))
	assert.Equal(t, storage.Text("Rossi"), first[1])
	assert.Equal(t, storage.Number(100), first[3])
	assert.Equal(t, storage.CellDuration, first[4].Kind)
	assert.Equal(t, 90*time.Minute, first[4].Duration)

	second := table.Rows[1]
	assert.Equal(t, storage.Text("03/01/2024"), second[0])
	assert.Equal(t, storage.Text("1042"), second[1], "numbers stored as text stay text")
	assert.Equal(t, storage.Text("N/D"), second[3])
	assert.Equal(t, storage.CellDuration, second[4].Kind)
	assert.Equal(t, 36*time.Hour, second[4].Duration)

	assert.Empty(t, table.Rows[2])

	last := table.Rows[3]
	assert.Equal(t, storage.Number(45295), last[0], "unformatted serials stay numbers")
	assert.Equal(t, storage.Number(12.5), last[3])
	assert.Equal(t, 7, table.Line(3))
}

func TestReadWorkbook_SheetSelection(t *testing.T) {
	buf := buildWorkbook(t)

	byName, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), "turni.xlsx", "Turni")
	require.NoError(t, err)
	assert.Equal(t, []string{"Giorno", "Addetto"}, byName.Headers)
	assert.Empty(t, byName.Rows)

	byIndex, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), "turni.xlsx", "1")
	require.NoError(t, err)
	assert.Equal(t, byName.Headers, byIndex.Headers)

	_, err = ReadWorkbook(bytes.NewReader(buf.Bytes()), "turni.xlsx", "Magazzino")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	_, err = ReadWorkbook(bytes.NewReader(buf.Bytes()), "turni.xlsx", "5")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	sheets, err := Sheets(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "Turni"}, sheets)
}

func TestReadWorkbook_EmptySheet(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = ReadWorkbook(bytes.NewReader(buf.Bytes()), "vuoto.xlsx", "")
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadCSV(t *testing.T) {
	data := "\xEF\xBB\xBFData;Operatore;Reparto;Pezzi prodotti;Minuti\n" +
		"02/01/2024;Rossi;Taglio;100;60\n" +
		"\n" +
		"02/01/2024;\"Bianchi; Luca\";Taglio;1.234;30,5\n" +
		";;;;\n"

	table, err := ReadCSV(strings.NewReader(data), "turni.csv")
	require.NoError(t, err)

	assert.Equal(t, "turni.csv", table.Name)
	assert.Equal(t, []string{"Data", "Operatore", "Reparto", "Pezzi prodotti", "Minuti"}, table.Headers)
	assert.Equal(t, 1, table.HeaderLine)
	require.Len(t, table.Rows, 4)

	assert.Equal(t, storage.Text("Rossi"), table.Rows[0][1])
	assert.Empty(t, table.Rows[1])
	assert.Equal(t, storage.Text("Bianchi; Luca"), table.Rows[2][1])
	assert.Equal(t, storage.Text("30,5"), table.Rows[2][4])
	assert.Equal(t, 4, table.Line(2))
	assert.Equal(t, storage.Blank(), table.Rows[3][0])
}

func TestReadCSV_CommaAndLeadingBlankLines(t *testing.T) {
	data := "\n,,\nDate,Employee,Process,Quantity,Duration\n2024-01-02,Rossi,Cut,5,10\n"

	table, err := ReadCSV(strings.NewReader(data), "ops.csv")
	require.NoError(t, err)

	assert.Equal(t, 3, table.HeaderLine)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, storage.Text("Cut"), table.Rows[0][2])

	_, err = ReadCSV(strings.NewReader("\n\n"), "empty.csv")
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestRead_ByExtension(t *testing.T) {
	assert.Equal(t, FormatWorkbook, FormatOf("Report.XLSM"))
	assert.Equal(t, FormatCSV, FormatOf("dati.csv"))
	assert.Equal(t, FormatUnknown, FormatOf("dati.ods"))

	_, err := Read(strings.NewReader(""), "dati.ods", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Read(strings.NewReader("not a zip archive"), "dati.xlsx", "")
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestClassifyFormat(t *testing.T) {
	tests := map[string]formatKind{
		"dd/mm/yyyy":           formatDate,
		"d mmmm yyyy":          formatDate,
		"mmm":                  formatDate,
		"hh:mm":                formatClock,
		"mm:ss":                formatClock,
		"[h]:mm":               formatElapsed,
		"[mm]:ss":              formatElapsed,
		"#,##0.00":             formatGeneral,
		"0\" min\"":            formatGeneral,
		"[$-410]dd/mm/yyyy":    formatDate,
		"[Red]#,##0;[Blue]0.0": formatGeneral,
	}
	for code, want := range tests {
		assert.Equal(t, want, classifyFormat(code), code)
	}

	assert.Equal(t, formatDate, builtinFormat(14))
	assert.Equal(t, formatClock, builtinFormat(20))
	assert.Equal(t, formatElapsed, builtinFormat(46))
	assert.Equal(t, formatGeneral, builtinFormat(2))
}
