package list

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"trumetrapla/http-server/report/form"
	"trumetrapla/internal/source"
)

type Response struct {
	File   string   `json:"file"`
	Sheets []string `json:"sheets"`
}

// ListSheets returns the sheet names of an uploaded workbook so the sheet
// can be chosen before the report is requested. CSV files have none.
func ListSheets(log *slog.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sheets.ListSheets"

		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}

		file, header, err := r.FormFile(form.FieldFile)
		if err != nil {
			form.WriteError(w, r, log, op, fmt.Errorf("%w: no file uploaded in field %q: %v", form.ErrBadRequest, form.FieldFile, err))
			return
		}
		defer file.Close()

		resp := Response{File: header.Filename, Sheets: []string{}}

		switch source.FormatOf(header.Filename) {
		case source.FormatWorkbook:
			resp.Sheets, err = source.Sheets(file)
		case source.FormatCSV:
		default:
			err = fmt.Errorf("%s: %w", header.Filename, source.ErrUnsupportedFormat)
		}
		if err != nil {
			form.WriteError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, resp)
	}
}
