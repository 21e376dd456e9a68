package analyze

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

type ReportBuilder interface {
	Build(ctx context.Context, inputs []report.Input, opts report.Options) (storage.Report, error)
}

// AnalyzeReport builds a report from the uploaded operation logs and
// answers with it as JSON.
func AnalyzeReport(log *slog.Logger, builder ReportBuilder, settings form.Settings, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.AnalyzeReport"

		req, err := form.Parse(w, r, settings)
		if err != nil {
			form.WriteError(w, r, log, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		rep, err := builder.Build(ctx, req.Inputs, req.Options)
		if err != nil {
			form.WriteError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, rep)
	}
}
