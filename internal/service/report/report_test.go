package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trumetrapla/internal/metrics"
	"trumetrapla/internal/service/columns"
	"trumetrapla/internal/service/kpi"
	"trumetrapla/internal/storage"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ReportBuilt(status string, records, rejected int, elapsed time.Duration) {
	m.Called(status, records, rejected, elapsed)
}

var fixedNow = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

func newTestService(rec Recorder, defaults columns.Overrides) *Service {
	s := NewReportService(slog.New(slog.NewTextHandler(io.Discard, nil)), rec, defaults)
	s.now = func() time.Time { return fixedNow }
	s.newID = func() string { return "report-1" }
	return s
}

func scenarioTable(name string, rows ...[]storage.Cell) storage.Table {
	return storage.Table{
		Name:       name,
		Headers:    []string{"Data", "Operatore", "Reparto", "Pezzi prodotti", "Minuti"},
		Rows:       rows,
		HeaderLine: 1,
	}
}

func opRow(date, employee, process string, qty storage.Cell, minutes float64) []storage.Cell {
	return []storage.Cell{storage.Text(date), storage.Text(employee), storage.Text(process), qty, storage.Number(minutes)}
}

func TestBuild_ScenarioAAndB(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("ReportBuilt", metrics.StatusOK, 2, 1, mock.Anything).Once()
	s := newTestService(rec, columns.Overrides{})

	table := scenarioTable("turni.xlsx [Sheet1]",
		opRow("2024-01-02", "Rossi", "Taglio", storage.Number(100), 60),
		opRow("2024-01-02", "Verdi", "Taglio", storage.Text("N/D"), 45),
		opRow("2024-01-02", "Bianchi", "Taglio", storage.Number(50), 30),
	)

	rep, err := s.Build(context.Background(), []Input{TableInput(table)}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "report-1", rep.ID)
	assert.Equal(t, fixedNow, rep.GeneratedAt)
	assert.Equal(t, 150, rep.Summary.TotalQuantity)
	assert.Equal(t, 90.0, rep.Summary.TotalDurationMinutes)
	assert.InDelta(t, 100.0, rep.Summary.AverageProductivity, 1e-9)

	require.Len(t, rep.ByProcess, 1)
	assert.Equal(t, "Taglio", rep.ByProcess[0].Key)
	assert.Equal(t, 150, rep.ByProcess[0].TotalQuantity)
	require.Len(t, rep.ByEmployee, 2)
	require.Len(t, rep.Daily, 1)

	require.Len(t, rep.RowErrors, 1)
	assert.Equal(t, storage.ReportRowError{
		Source: "turni.xlsx [Sheet1]",
		Line:   3,
		Field:  "quantity",
		Value:  "N/D",
		Reason: "not a number",
	}, rep.RowErrors[0])

	require.Len(t, rep.Sources, 1)
	assert.Equal(t, 3, rep.Sources[0].Rows)
	assert.Equal(t, 2, rep.Sources[0].Records)
	assert.Equal(t, 1, rep.Sources[0].RejectedRows)
	assert.Equal(t, "Pezzi prodotti", rep.Sources[0].Columns["quantity"])
	assert.Len(t, rep.Warnings, 1)

	rec.AssertExpectations(t)
}

func TestBuild_ScenarioC_NoRows(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("ReportBuilt", metrics.StatusOK, 0, 0, mock.Anything).Once()
	s := newTestService(rec, columns.Overrides{})

	rep, err := s.Build(context.Background(), []Input{TableInput(scenarioTable("vuoto.csv"))}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, rep.Summary.TotalQuantity)
	assert.Equal(t, 0, rep.Summary.RecordCount)
	assert.Equal(t, 0.0, rep.Summary.AverageProductivity)
	assert.Empty(t, rep.ByEmployee)
	assert.Empty(t, rep.ByProcess)
	assert.Empty(t, rep.Daily)
	assert.NotNil(t, rep.RowErrors)
	assert.Equal(t, []string{"no valid records found"}, rep.Warnings)
	rec.AssertExpectations(t)
}

func TestBuild_InputsKeepOrder(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("ReportBuilt", metrics.StatusOK, 6, 0, mock.Anything).Once()
	s := newTestService(rec, columns.Overrides{})

	var inputs []Input
	for i, name := range []string{"a.csv", "b.csv", "c.csv", "d.csv", "e.csv", "f.csv"} {
		delay := time.Duration(6-i) * time.Millisecond
		table := scenarioTable(name, opRow("2024-01-02", name, "Taglio", storage.Number(float64(i+1)), 10))
		inputs = append(inputs, Input{
			Name: name,
			Open: func(ctx context.Context) (storage.Table, error) {
				time.Sleep(delay)
				return table, nil
			},
		})
	}

	rep, err := s.Build(context.Background(), inputs, Options{})
	require.NoError(t, err)

	var names []string
	for _, src := range rep.Sources {
		names = append(names, src.Name)
	}
	assert.Equal(t, []string{"a.csv", "b.csv", "c.csv", "d.csv", "e.csv", "f.csv"}, names)
	assert.Equal(t, 21, rep.Summary.TotalQuantity)
	assert.Equal(t, 6, rep.Summary.Employees)
}

func TestBuild_ColumnErrorsFailTheBuild(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("ReportBuilt", metrics.StatusUnresolved, 0, 0, mock.Anything).Once()
	s := newTestService(rec, columns.Overrides{})

	bad := storage.Table{Name: "strano.xlsx", Headers: []string{"Data", "Chi", "Cosa"}}
	_, err := s.Build(context.Background(), []Input{TableInput(scenarioTable("ok.csv")), TableInput(bad)}, Options{})
	require.Error(t, err)

	var unresolved *columns.UnresolvedMandatoryFieldError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []columns.Field{columns.DurationMinutes, columns.Employee, columns.Process, columns.Quantity}, unresolved.Fields)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "strano.xlsx", srcErr.Source)
	rec.AssertExpectations(t)
}

func TestBuild_OverridesAndDefaults(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("ReportBuilt", metrics.StatusOK, 1, 0, mock.Anything).Once()
	defaults := columns.Overrides{Aliases: map[columns.Field][]string{columns.Employee: {"Chi"}}}
	s := newTestService(rec, defaults)

	table := storage.Table{
		Name:    "custom.csv",
		Headers: []string{"Giorno", "Chi", "Cosa", "Pezzi", "Pezzi buoni", "Minuti"},
		Rows: [][]storage.Cell{{
			storage.Text("02/01/2024"), storage.Text("Rossi"), storage.Text("Taglio"),
			storage.Number(10), storage.Number(8), storage.Number(60),
		}},
	}
	opts := Options{Overrides: columns.Overrides{
		Columns: map[columns.Field]columns.Locator{
			columns.Process:  columns.HeaderLocator("Cosa"),
			columns.Quantity: columns.HeaderLocator("Pezzi buoni"),
		},
	}}

	rep, err := s.Build(context.Background(), []Input{TableInput(table)}, opts)
	require.NoError(t, err)

	assert.Equal(t, 8, rep.Summary.TotalQuantity)
	assert.Equal(t, "Chi", rep.Sources[0].Columns["employee"])
	rec.AssertExpectations(t)
}

func TestBuild_FilterAndGroupBy(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("ReportBuilt", metrics.StatusOK, 3, 0, mock.Anything).Twice()
	s := newTestService(rec, columns.Overrides{})

	table := scenarioTable("turni.csv",
		opRow("2024-01-02", "Rossi", "Taglio", storage.Number(100), 60),
		opRow("2024-01-03", "Rossi", "Piega", storage.Number(30), 60),
		opRow("2024-01-03", "Bianchi", "Taglio", storage.Number(50), 30),
	)

	rep, err := s.Build(context.Background(), []Input{TableInput(table)}, Options{
		Filter:  kpi.Criteria{Employee: "Rossi"},
		GroupBy: []columns.Field{columns.Process},
		Labels:  map[columns.Field]string{columns.Process: "Processo"},
	})
	require.NoError(t, err)

	assert.Equal(t, 130, rep.Summary.TotalQuantity)
	require.Len(t, rep.ByGroup, 2)
	assert.Equal(t, "Processo: Taglio", rep.ByGroup[0].Key)
	assert.Empty(t, rep.Warnings)

	rep, err = s.Build(context.Background(), []Input{TableInput(table)}, Options{
		Filter: kpi.Criteria{Employee: "Neri"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"no records match the filter"}, rep.Warnings)
	rec.AssertExpectations(t)
}

func TestBuild_SourceFailures(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("ReportBuilt", metrics.StatusSourceError, 0, 0, mock.Anything).Once()
	s := newTestService(rec, columns.Overrides{})

	boom := errors.New("disk unplugged")
	_, err := s.Build(context.Background(), []Input{{
		Name: "rotto.xlsx",
		Open: func(context.Context) (storage.Table, error) { return storage.Table{}, boom },
	}}, Options{})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "rotto.xlsx")

	_, err = s.Build(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoInputs)
	rec.AssertExpectations(t)
}

func TestSuggestColumnsAndFields(t *testing.T) {
	s := newTestService(new(MockRecorder), columns.Overrides{Aliases: map[columns.Field][]string{columns.Machine: {"Cella"}}})

	sg, err := s.SuggestColumns([]string{"Data", "Operatore", "Cella"}, columns.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"date": "Data", "employee": "Operatore", "machine": "Cella"}, sg.Columns)
	assert.Equal(t, []string{"process", "quantity", "duration_minutes"}, sg.Missing)

	_, err = s.SuggestColumns([]string{"Data"}, columns.Overrides{
		Columns: map[columns.Field]columns.Locator{columns.Quantity: columns.HeaderLocator("Pezzi")},
	})
	var invalid *columns.InvalidExplicitColumnError
	assert.ErrorAs(t, err, &invalid)

	fields := s.Fields()
	require.Len(t, fields, 7)
	assert.Equal(t, "date", fields[0].Name)
	assert.True(t, fields[0].Mandatory)
	assert.False(t, fields[5].Mandatory)
	assert.Contains(t, fields[5].Aliases, "cella")
}

func TestWriteText(t *testing.T) {
	rep := storage.Report{
		Summary: storage.OverallSummary{
			GroupSummary: storage.GroupSummary{TotalQuantity: 150, TotalDurationMinutes: 90, RecordCount: 2, AverageProductivity: 100},
			Employees:    2,
			Processes:    1,
		},
		ByEmployee: []storage.KeyedSummary{
			{Key: "Rossi", GroupSummary: storage.GroupSummary{TotalQuantity: 100, TotalDurationMinutes: 60, RecordCount: 1, AverageProductivity: 100}},
		},
		ByProcess: []storage.KeyedSummary{
			{Key: "Taglio", GroupSummary: storage.GroupSummary{TotalQuantity: 150, TotalDurationMinutes: 90, RecordCount: 2, AverageProductivity: 100}},
		},
		Daily: []storage.DailySummary{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), GroupSummary: storage.GroupSummary{TotalQuantity: 150, TotalDurationMinutes: 90, RecordCount: 2, AverageProductivity: 100}},
		},
		RowErrors: []storage.ReportRowError{{Source: "turni.xlsx", Line: 3, Field: "quantity", Value: "N/D", Reason: "not a number"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rep))
	out := buf.String()

	assert.Contains(t, out, "=== Riepilogo generale ===\nTotale pezzi: 150\nOre lavorate: 1.50\nProduttività media: 100.00 pezzi/ora\n")
	assert.Contains(t, out, "Dipendenti coinvolti: 2\nProcessi analizzati: 1\n")
	assert.Contains(t, out, "=== Performance per dipendente ===\n- Rossi: 100 pezzi, 1.00 h, 100.00 pezzi/ora\n")
	assert.Contains(t, out, "- Taglio: 150 pezzi, 1.50 h, 100.00 pezzi/ora\n")
	assert.Contains(t, out, "- 02/01/2024: 150 pezzi in 1.50 h (100.00 pezzi/ora)\n")
	assert.Contains(t, out, `- turni.xlsx, riga 3: quantity "N/D": not a number`)
	assert.NotContains(t, out, "Macchine")

	buf.Reset()
	require.NoError(t, WriteText(&buf, storage.Report{}))
	assert.Equal(t, "Nessun dato trovato nel file specificato.\n", buf.String())
}
