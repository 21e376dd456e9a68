package analyze

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trumetrapla/http-server/report/form"
	"trumetrapla/internal/service/columns"
	"trumetrapla/internal/service/report"
	"trumetrapla/internal/storage"
)

type MockReportBuilder struct {
	mock.Mock
}

func (m *MockReportBuilder) Build(ctx context.Context, inputs []report.Input, opts report.Options) (storage.Report, error) {
	args := m.Called(ctx, inputs, opts)
	return args.Get(0).(storage.Report), args.Error(1)
}

const turni = "Data;Operatore;Reparto;Pezzi prodotti;Minuti\n02/01/2024;Rossi;Taglio;100;60\n"

func uploadRequest(t *testing.T, name, data string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.WriteString(fw, data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/report", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var settings = form.Settings{MaxBytes: 1 << 20, MaxFiles: 4}

func TestAnalyzeReport_Success(t *testing.T) {
	builder := new(MockReportBuilder)

	builder.On("Build", mock.Anything, mock.MatchedBy(func(inputs []report.Input) bool {
		if len(inputs) != 1 || inputs[0].Name != "turni.csv" {
			return false
		}
		table, err := inputs[0].Open(context.Background())
		return err == nil && len(table.Rows) == 1
	}), mock.MatchedBy(func(opts report.Options) bool {
		return opts.Filter.Process == "Taglio"
	})).Return(storage.Report{
		ID: "report-1",
		Summary: storage.OverallSummary{
			GroupSummary: storage.GroupSummary{TotalQuantity: 100, TotalDurationMinutes: 60, RecordCount: 1, AverageProductivity: 100},
			Employees:    1,
			Processes:    1,
		},
		ByEmployee: []storage.KeyedSummary{{Key: "Rossi", GroupSummary: storage.GroupSummary{TotalQuantity: 100}}},
		RowErrors:  []storage.ReportRowError{},
	}, nil)

	rr := httptest.NewRecorder()
	req := uploadRequest(t, "turni.csv", turni, map[string]string{"process": "Taglio"})

	AnalyzeReport(slog.Default(), builder, settings, time.Second).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp storage.Report
	require.NoError(t, render.DecodeJSON(rr.Body, &resp))
	assert.Equal(t, "report-1", resp.ID)
	assert.Equal(t, 100, resp.Summary.TotalQuantity)
	assert.Equal(t, 100.0, resp.Summary.AverageProductivity)
	require.Len(t, resp.ByEmployee, 1)
	assert.Equal(t, "Rossi", resp.ByEmployee[0].Key)

	builder.AssertExpectations(t)
}

func TestAnalyzeReport_BadForm(t *testing.T) {
	builder := new(MockReportBuilder)

	rr := httptest.NewRecorder()
	req := uploadRequest(t, "turni.csv", turni, map[string]string{"from": "ieri"})

	AnalyzeReport(slog.Default(), builder, settings, time.Second).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid from date")
	builder.AssertNotCalled(t, "Build")
}

func TestAnalyzeReport_BuildErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{
			name: "unresolved columns",
			err:  &report.SourceError{Source: "turni.csv", Err: &columns.UnresolvedMandatoryFieldError{Fields: []columns.Field{columns.Quantity}}},
			code: http.StatusUnprocessableEntity,
			body: `"missing":["quantity"]`,
		},
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			code: http.StatusGatewayTimeout,
			body: "report took too long",
		},
		{
			name: "unexpected",
			err:  errors.New("boom"),
			code: http.StatusInternalServerError,
			body: "Internal error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			builder := new(MockReportBuilder)
			builder.On("Build", mock.Anything, mock.Anything, mock.Anything).Return(storage.Report{}, tc.err)

			rr := httptest.NewRecorder()
			AnalyzeReport(slog.Default(), builder, settings, time.Second).ServeHTTP(rr, uploadRequest(t, "turni.csv", turni, nil))

			assert.Equal(t, tc.code, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.body)
			builder.AssertExpectations(t)
		})
	}
}
