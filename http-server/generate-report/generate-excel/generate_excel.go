package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"trumetrapla/http-server/report/form"
	"trumetrapla/internal/service/report"
	"trumetrapla/internal/storage"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportBuilder interface {
	Build(ctx context.Context, inputs []report.Input, opts report.Options) (storage.Report, error)
}

type ExcelGenerator interface {
	GenerateExcel(rep storage.Report) ([]byte, error)
}

// GenerateReportExcel builds a report from the uploaded files and sends it
// back as an xlsx attachment.
func GenerateReportExcel(log *slog.Logger, builder ReportBuilder, gen ExcelGenerator, settings form.Settings, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateReportExcel"

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

		excelBytes, err := gen.GenerateExcel(rep)
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("Report_Produttivita_%s.xlsx", rep.GeneratedAt.Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", contentTypeXLSX)
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Header().Set("X-Report-Id", rep.ID)
		if _, err := w.Write(excelBytes); err != nil {
			log.Warn("failed to write excel", slog.String("op", op), slog.String("error", err.Error()))
		}
	}
}
