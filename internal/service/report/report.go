package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"trumetrapla/internal/metrics"
	"trumetrapla/internal/service/columns"
	"trumetrapla/internal/service/kpi"
	"trumetrapla/internal/service/loader"
	"trumetrapla/internal/storage"
)

var ErrNoInputs = errors.New("no input tables")

// maxParallelInputs bounds how many tables are decoded at once.
const maxParallelInputs = 4

// Input is one table to include in a report. Open is called once per build.
type Input struct {
	Name string
	Open func(ctx context.Context) (storage.Table, error)
}

// TableInput wraps an already decoded table.
func TableInput(t storage.Table) Input {
	return Input{
		Name: t.Name,
		Open: func(context.Context) (storage.Table, error) { return t, nil },
	}
}

type Options struct {
	Overrides columns.Overrides
	Filter    kpi.Criteria
	// GroupBy adds a composite breakdown when not empty.
	GroupBy []columns.Field
	Labels  map[columns.Field]string
}

// SourceError ties a failure to the input it came from.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

type Recorder interface {
	ReportBuilt(status string, records, rejected int, elapsed time.Duration)
}

type Service struct {
	log      *slog.Logger
	metrics  Recorder
	defaults columns.Overrides

	now   func() time.Time
	newID func() string
}

// NewReportService builds the service. defaults are merged under the
// per-request overrides of every build.
func NewReportService(log *slog.Logger, metrics Recorder, defaults columns.Overrides) *Service {
	return &Service{
		log:      log,
		metrics:  metrics,
		defaults: defaults,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

type loaded struct {
	source  storage.ReportSource
	records []storage.OperationRecord
	errors  []storage.ReportRowError
}

// Build reads every input, resolves its columns, loads its records and
// aggregates them into one report. Inputs are processed concurrently; the
// report keeps them in the given order. A column error in any input fails
// the whole build, row errors do not.
func (s *Service) Build(ctx context.Context, inputs []Input, opts Options) (storage.Report, error) {
	const op = "service.report.Build"

	start := s.now()
	log := s.log.With(slog.String("op", op), slog.Int("inputs", len(inputs)))

	if len(inputs) == 0 {
		return storage.Report{}, fmt.Errorf("%s: %w", op, ErrNoInputs)
	}

	ov := s.defaults.Merge(opts.Overrides)
	results := make([]loaded, len(inputs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelInputs)
	for i, in := range inputs {
		g.Go(func() error {
			res, err := loadInput(gCtx, in, ov)
			if err != nil {
				return &SourceError{Source: in.Name, Err: err}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.ReportBuilt(statusOf(err), 0, 0, s.now().Sub(start))
		log.Error("failed to build report", slog.String("error", err.Error()))
		return storage.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	rep := storage.Report{
		ID:          s.newID(),
		GeneratedAt: s.now().UTC(),
		RowErrors:   []storage.ReportRowError{},
	}
	var records []storage.OperationRecord
	for _, res := range results {
		rep.Sources = append(rep.Sources, res.source)
		rep.RowErrors = append(rep.RowErrors, res.errors...)
		records = append(records, res.records...)
		if res.source.RejectedRows > 0 {
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("%s: %d row(s) rejected", res.source.Name, res.source.RejectedRows))
		}
	}
	loadedCount := len(records)

	if !opts.Filter.IsZero() {
		records = kpi.Filter(records, opts.Filter)
	}

	switch {
	case loadedCount == 0:
		rep.Warnings = append(rep.Warnings, "no valid records found")
	case len(records) == 0:
		rep.Warnings = append(rep.Warnings, "no records match the filter")
	}

	rep.Summary = kpi.Summarize(records)
	rep.ByEmployee = kpi.GroupByEmployee(records)
	rep.ByProcess = kpi.GroupByProcess(records)
	rep.Daily = kpi.DailyTrend(records)

	if len(opts.GroupBy) > 0 {
		groups, err := kpi.GroupByAttributes(records, opts.GroupBy, opts.Labels)
		if err != nil {
			s.metrics.ReportBuilt(metrics.StatusInternalError, 0, 0, s.now().Sub(start))
			return storage.Report{}, fmt.Errorf("%s: %w", op, err)
		}
		rep.ByGroup = groups
	}

	s.metrics.ReportBuilt(metrics.StatusOK, loadedCount, len(rep.RowErrors), s.now().Sub(start))
	log.Info("report built",
		slog.String("id", rep.ID),
		slog.Int("records", loadedCount),
		slog.Int("rejected", len(rep.RowErrors)),
	)

	return rep, nil
}

func loadInput(ctx context.Context, in Input, ov columns.Overrides) (loaded, error) {
	if err := ctx.Err(); err != nil {
		return loaded{}, err
	}

	table, err := in.Open(ctx)
	if err != nil {
		return loaded{}, err
	}
	name := table.Name
	if name == "" {
		name = in.Name
	}

	m, err := columns.Resolve(table.Headers, ov)
	if err != nil {
		return loaded{}, err
	}

	records, verrs := loader.Collect(loader.Load(table.RowSeq(), m))

	res := loaded{
		source: storage.ReportSource{
			Name:         name,
			Columns:      m.Headers(),
			Rows:         len(table.Rows),
			Records:      len(records),
			RejectedRows: len(verrs),
		},
		records: records,
	}
	for _, e := range verrs {
		res.errors = append(res.errors, storage.ReportRowError{
			Source: name,
			Line:   table.Line(e.Row),
			Field:  e.Field.String(),
			Value:  e.Value,
			Reason: e.Reason,
		})
	}
	return res, nil
}

func statusOf(err error) string {
	var (
		unresolved *columns.UnresolvedMandatoryFieldError
		invalid    *columns.InvalidExplicitColumnError
	)
	switch {
	case errors.As(err, &unresolved):
		return metrics.StatusUnresolved
	case errors.As(err, &invalid), errors.Is(err, columns.ErrUnknownField):
		return metrics.StatusInvalidColumn
	}
	return metrics.StatusSourceError
}
