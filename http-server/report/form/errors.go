package form

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"trumetrapla/internal/service/columns"
	"trumetrapla/internal/service/kpi"
	"trumetrapla/internal/source"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
	Field   string   `json:"field,omitempty"`
}

// WriteError answers with the status matching err: 422 for column problems,
// 400 for bad input, 504 on timeout and 500 otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	var (
		unresolved *columns.UnresolvedMandatoryFieldError
		invalid    *columns.InvalidExplicitColumnError
		tooLarge   *http.MaxBytesError
	)

	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &unresolved):
		status = http.StatusUnprocessableEntity
		for _, f := range unresolved.Fields {
			resp.Missing = append(resp.Missing, f.String())
		}
	case errors.As(err, &invalid):
		status = http.StatusUnprocessableEntity
		resp.Field = invalid.Field.String()
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, columns.ErrUnknownField),
		errors.Is(err, columns.ErrInvalidDirective),
		errors.Is(err, kpi.ErrNoGroupFields),
		errors.Is(err, kpi.ErrNotGroupableField),
		errors.Is(err, source.ErrUnsupportedFormat),
		errors.Is(err, source.ErrSheetNotFound),
		errors.Is(err, source.ErrNoHeader),
		errors.Is(err, source.ErrUnreadable):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		resp.Error = "report took too long"
	default:
		resp.Error = "Internal error"
	}

	l := log.With(slog.String("op", op), slog.String("error", err.Error()), slog.Int("status", status))
	if status >= http.StatusInternalServerError {
		l.Error("request failed")
	} else {
		l.Warn("request rejected")
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}
