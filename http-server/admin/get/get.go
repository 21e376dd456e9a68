package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"trumetrapla/http-server/report/form"
	"trumetrapla/internal/service/report"
	"trumetrapla/internal/storage"
)

type TableQuerier interface {
	QueryTable(ctx context.Context, name, query string, args ...any) (storage.Table, error)
}

type ReportBuilder interface {
	Build(ctx context.Context, inputs []report.Input, opts report.Options) (storage.Report, error)
}

// ImportSource names the configured query in reports and error rows.
const ImportSource = "database"

// GetImportReport builds a report from the rows of the configured import
// query. Column overrides, filter and grouping come from the URL query.
func GetImportReport(log *slog.Logger, db TableQuerier, builder ReportBuilder, query string, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetImportReport"

		opts, err := form.Options(r.URL.Query())
		if err != nil {
			form.WriteError(w, r, log, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		input := report.Input{
			Name: ImportSource,
			Open: func(ctx context.Context) (storage.Table, error) {
				return db.QueryTable(ctx, ImportSource, query)
			},
		}

		rep, err := builder.Build(ctx, []report.Input{input}, opts)
		if err != nil {
			form.WriteError(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.String("report_id", rep.ID)).Info("database import analyzed",
			slog.Int("records", rep.Summary.RecordCount))

		render.JSON(w, r, rep)
	}
}
