package suggest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"trumetrapla/http-server/report/form"
	"trumetrapla/internal/service/columns"
	"trumetrapla/internal/service/report"
)

type ColumnSuggester interface {
	SuggestColumns(headers []string, ov columns.Overrides) (report.Suggestion, error)
}

type Request struct {
	Headers []string            `json:"headers" validate:"required,min=1,max=500"`
	Columns map[string]string   `json:"columns" validate:"omitempty,dive,keys,required,endkeys,required"`
	Aliases map[string][]string `json:"aliases" validate:"omitempty,dive,keys,required,endkeys,required,dive,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SuggestColumns proposes a column mapping for a header row before the
// file is uploaded.
func SuggestColumns(log *slog.Logger, suggester ColumnSuggester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.columns.SuggestColumns"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		if err := validate.Struct(req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				form.WriteError(w, r, log, op, fmt.Errorf("%w: %s", form.ErrBadRequest, describe(verrs)))
				return
			}
			form.WriteError(w, r, log, op, err)
			return
		}

		ov, err := columns.ParseOverrides(columnDirectives(req.Columns), aliasDirectives(req.Aliases))
		if err != nil {
			form.WriteError(w, r, log, op, err)
			return
		}

		sg, err := suggester.SuggestColumns(req.Headers, ov)
		if err != nil {
			form.WriteError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, sg)
	}
}

func columnDirectives(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for field, column := range m {
		out = append(out, field+"="+column)
	}
	sort.Strings(out)
	return out
}

func aliasDirectives(m map[string][]string) []string {
	var out []string
	for field, aliases := range m {
		for _, a := range aliases {
			out = append(out, field+"="+a)
		}
	}
	sort.Strings(out)
	return out
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s item(s)", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must have at most %s item(s)", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
