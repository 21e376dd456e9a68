package get

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"trumetrapla/internal/service/report"
)

type FieldsProvider interface {
	Fields() []report.FieldInfo
}

type Response struct {
	Fields []report.FieldInfo `json:"fields"`
}

// GetFields lists the canonical fields and the header aliases each one
// is recognized by.
func GetFields(log *slog.Logger, fields FieldsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.fields.GetFields"

		list := fields.Fields()
		log.With(slog.String("op", op)).Debug("fields listed", slog.Int("count", len(list)))

		render.JSON(w, r, Response{Fields: list})
	}
}
