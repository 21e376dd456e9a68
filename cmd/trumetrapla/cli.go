package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trumetrapla/http-server/report/form"
	"trumetrapla/internal/config"
	"trumetrapla/internal/service/columns"
	generate_excel "trumetrapla/internal/service/generate-excel"
	"trumetrapla/internal/service/report"
	"trumetrapla/internal/source"
	"trumetrapla/internal/storage"
)

// nopRecorder drops report metrics in one-shot CLI runs.
type nopRecorder struct{}

func (nopRecorder) ReportBuilt(string, int, int, time.Duration) {}

// multiFlag collects a flag given more than once.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ", ")
}

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

type reportFlags struct {
	config  string
	sheet   string
	xlsx    string
	json    bool
	columns multiFlag
	aliases multiFlag
	groupBy multiFlag
	labels  multiFlag
	filter  map[string]*string
}

func newReportFlags(stderr io.Writer) (*flag.FlagSet, *reportFlags) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: trumetrapla report [flags] file...")
		fs.PrintDefaults()
	}

	rf := &reportFlags{filter: make(map[string]*string)}
	fs.StringVar(&rf.config, "config", "", "path to the YAML config (default $"+config.EnvConfigPath+")")
	fs.StringVar(&rf.sheet, "sheet", "", "sheet name or 0-based index (default: first sheet)")
	fs.StringVar(&rf.xlsx, "xlsx", "", "also write the report as an Excel workbook to this path")
	fs.BoolVar(&rf.json, "json", false, "print the report as JSON instead of text")
	fs.Var(&rf.columns, "column", "force a column, field=header or field=#index (repeatable)")
	fs.Var(&rf.aliases, "alias", "extra header alias, field=alias (repeatable)")
	fs.Var(&rf.groupBy, "group-by", "group by these fields, comma separated (repeatable)")
	fs.Var(&rf.labels, "label", "label of a group field, field=text (repeatable)")

	for _, name := range []string{form.FieldEmployee, form.FieldProcess, form.FieldMachine, form.FieldProcessType} {
		rf.filter[name] = fs.String(strings.ReplaceAll(name, "_", "-"), "", "keep only records with this "+strings.ReplaceAll(name, "_", " "))
	}
	rf.filter[form.FieldFrom] = fs.String(form.FieldFrom, "", "keep records on or after this day, YYYY-MM-DD")
	rf.filter[form.FieldTo] = fs.String(form.FieldTo, "", "keep records on or before this day, YYYY-MM-DD")

	return fs, rf
}

// options gathers the flags the way the upload form carries them.
func (rf *reportFlags) options() (report.Options, error) {
	values := map[string][]string{
		form.FieldColumn:  rf.columns,
		form.FieldAlias:   rf.aliases,
		form.FieldGroupBy: rf.groupBy,
		form.FieldLabel:   rf.labels,
	}
	for name, v := range rf.filter {
		if *v != "" {
			values[name] = []string{*v}
		}
	}
	return form.Options(values)
}

func runReport(args []string, stdout, stderr io.Writer) int {
	fs, rf := newReportFlags(stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(rf.config)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	defaults, err := defaultOverrides(cfg.Report)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	opts, err := rf.options()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	sheet := rf.sheet
	if sheet == "" {
		sheet = cfg.Report.Sheet
	}

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := report.NewReportService(log, nopRecorder{}, defaults)

	inputs := make([]report.Input, 0, fs.NArg())
	for _, path := range fs.Args() {
		inputs = append(inputs, fileInput(path, sheet))
	}

	rep, err := svc.Build(context.Background(), inputs, opts)
	if err != nil {
		printBuildError(stderr, err)
		return exitError
	}

	if rf.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(rep)
	} else {
		err = report.WriteText(stdout, rep)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	if rf.xlsx != "" {
		data, err := generate_excel.NewGenerateService().GenerateExcel(rep)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		if err := os.WriteFile(rf.xlsx, data, 0o644); err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		fmt.Fprintf(stderr, "Report Excel salvato in %s\n", rf.xlsx)
	}

	return exitOK
}

func fileInput(path, sheet string) report.Input {
	return report.Input{
		Name: filepath.Base(path),
		Open: func(context.Context) (storage.Table, error) {
			return source.ReadFile(path, sheet)
		},
	}
}

func printBuildError(w io.Writer, err error) {
	var unresolved *columns.UnresolvedMandatoryFieldError
	fmt.Fprintf(w, "errore: %v\n", err)
	if errors.As(err, &unresolved) {
		fmt.Fprintln(w, "usa -column campo=intestazione oppure -alias campo=alias per indicare le colonne mancanti")
	}
}

func runFields(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fields", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML config (default $"+config.EnvConfigPath+")")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defaults, err := defaultOverrides(cfg.Report)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	svc := report.NewReportService(slog.New(slog.NewTextHandler(io.Discard, nil)), nopRecorder{}, defaults)
	for _, f := range svc.Fields() {
		marker := " "
		if f.Mandatory {
			marker = "*"
		}
		fmt.Fprintf(stdout, "%s %-16s %s\n", marker, f.Name, strings.Join(f.Aliases, ", "))
	}
	fmt.Fprintln(stdout, "\n* obbligatorio")
	return exitOK
}
