package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"trumetrapla/internal/config"
	"trumetrapla/internal/metrics"
	"trumetrapla/internal/service/columns"
	generate_excel "trumetrapla/internal/service/generate-excel"
	"trumetrapla/internal/service/report"
	"trumetrapla/internal/storage/mysql"
)

const usage = `usage: trumetrapla [command] [flags]

commands:
  serve    start the HTTP API (default)
  report   analyze operation logs and print the summary
  fields   list the canonical fields and their header aliases

run "trumetrapla <command> -h" for the flags of a command
`

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return serve(args, stderr)
	case "report":
		return runReport(args, stdout, stderr)
	case "fields":
		return runFields(args, stdout, stderr)
	case "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	}

	fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
	return exitUsage
}

// defaultOverrides turns the configured columns and aliases into the
// overrides every report starts from.
func defaultOverrides(cfg config.Report) (columns.Overrides, error) {
	ov, err := columns.ParseOverrides(cfg.Columns, cfg.AliasDirectives())
	if err != nil {
		return columns.Overrides{}, fmt.Errorf("report defaults: %w", err)
	}
	return ov, nil
}

func serve(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
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

	log := setupLogger(cfg.Env, os.Stdout, cfg.ErrorLog)

	defaults, err := defaultOverrides(cfg.Report)
	if err != nil {
		log.Error("invalid report defaults", slog.String("error", err.Error()))
		return exitError
	}

	rec := metrics.New()
	reportService := report.NewReportService(log, rec, defaults)
	genService := generate_excel.NewGenerateService()

	var storage *mysql.Storage
	if cfg.Database.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
		storage, err = mysql.New(ctx, cfg.Database)
		cancel()
		if err != nil {
			log.Error("failed to open db", slog.String("error", err.Error()))
			return exitError
		}
		defer storage.Close()
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, reportService, genService, storage, rec),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout + cfg.HTTPServer.RequestTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	log.Info("server started", slog.String("address", cfg.Address), slog.Bool("database", storage != nil))

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", slog.String("error", err.Error()))
			return exitError
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.RequestTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", slog.String("error", err.Error()))
			return exitError
		}
	}

	log.Info("server stopped")
	return exitOK
}
