// Package form reads report requests sent as multipart forms.
package form

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"trumetrapla/internal/service/columns"
	"trumetrapla/internal/service/kpi"
	"trumetrapla/internal/service/report"
	"trumetrapla/internal/source"
	"trumetrapla/internal/storage"
)

var ErrBadRequest = errors.New("bad request")

const (
	FieldFile        = "file"
	FieldSheet       = "sheet"
	FieldColumn      = "column"
	FieldAlias       = "alias"
	FieldGroupBy     = "group_by"
	FieldLabel       = "label"
	FieldEmployee    = "employee"
	FieldProcess     = "process"
	FieldMachine     = "machine"
	FieldProcessType = "process_type"
	FieldFrom        = "from"
	FieldTo          = "to"
)

// Settings bound an upload. Sheet is used when the form names none.
type Settings struct {
	MaxBytes int64
	MaxFiles int
	Sheet    string
}

type Request struct {
	Inputs  []report.Input
	Options report.Options
}

// Parse reads the uploaded files and the report options of r. File contents
// are kept in memory and decoded when the report is built.
func Parse(w http.ResponseWriter, r *http.Request, settings Settings) (Request, error) {
	if settings.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, settings.MaxBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Request{}, fmt.Errorf("upload exceeds %d bytes: %w", tooLarge.Limit, err)
		}
		return Request{}, badRequest("invalid multipart form: %v", err)
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[FieldFile]
	if len(files) == 0 {
		return Request{}, badRequest("no file uploaded in field %q", FieldFile)
	}
	if settings.MaxFiles > 0 && len(files) > settings.MaxFiles {
		return Request{}, badRequest("too many files: %d, at most %d", len(files), settings.MaxFiles)
	}

	sheet := r.FormValue(FieldSheet)
	if sheet == "" {
		sheet = settings.Sheet
	}
	var req Request
	for _, fh := range files {
		in, err := fileInput(fh, sheet)
		if err != nil {
			return Request{}, err
		}
		req.Inputs = append(req.Inputs, in)
	}

	opts, err := Options(r.MultipartForm.Value)
	if err != nil {
		return Request{}, err
	}
	req.Options = opts
	return req, nil
}

func fileInput(fh *multipart.FileHeader, sheet string) (report.Input, error) {
	name := fh.Filename
	if source.FormatOf(name) == source.FormatUnknown {
		return report.Input{}, fmt.Errorf("%s: %w", name, source.ErrUnsupportedFormat)
	}

	f, err := fh.Open()
	if err != nil {
		return report.Input{}, fmt.Errorf("%s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return report.Input{}, fmt.Errorf("%s: %w", name, err)
	}

	return report.Input{
		Name: name,
		Open: func(context.Context) (storage.Table, error) {
			return source.Read(bytes.NewReader(data), name, sheet)
		},
	}, nil
}

// Options reads overrides, filter and grouping from form values. The same
// keys work as URL query parameters.
func Options(values map[string][]string) (report.Options, error) {
	var opts report.Options

	ov, err := columns.ParseOverrides(values[FieldColumn], values[FieldAlias])
	if err != nil {
		return report.Options{}, err
	}
	opts.Overrides = ov

	first := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	opts.Filter = kpi.Criteria{
		Employee:    first(FieldEmployee),
		Process:     first(FieldProcess),
		Machine:     first(FieldMachine),
		ProcessType: first(FieldProcessType),
	}
	if opts.Filter.From, err = parseDay(first(FieldFrom)); err != nil {
		return report.Options{}, badRequest("invalid %s date: %v", FieldFrom, err)
	}
	if opts.Filter.To, err = parseDay(first(FieldTo)); err != nil {
		return report.Options{}, badRequest("invalid %s date: %v", FieldTo, err)
	}

	for _, name := range values[FieldGroupBy] {
		for _, part := range strings.Split(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := columns.ParseField(part)
			if err != nil {
				return report.Options{}, err
			}
			opts.GroupBy = append(opts.GroupBy, f)
		}
	}

	for _, l := range values[FieldLabel] {
		name, text, ok := strings.Cut(l, "=")
		if !ok || strings.TrimSpace(text) == "" {
			return report.Options{}, badRequest("invalid label %q: expected field=text", l)
		}
		f, err := columns.ParseField(name)
		if err != nil {
			return report.Options{}, err
		}
		if opts.Labels == nil {
			opts.Labels = make(map[columns.Field]string)
		}
		opts.Labels[f] = strings.TrimSpace(text)
	}

	return opts, nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}
