package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getimport "trumetrapla/http-server/admin/get"
	"trumetrapla/http-server/columns/suggest"
	getfields "trumetrapla/http-server/fields/get"
	generate_excel "trumetrapla/http-server/generate-report/generate-excel"
	"trumetrapla/http-server/report/analyze"
	"trumetrapla/http-server/report/form"
	"trumetrapla/http-server/sheets/list"
	"trumetrapla/internal/config"
	"trumetrapla/internal/metrics"
	"trumetrapla/internal/middleware/auth"
	generate_excel2 "trumetrapla/internal/service/generate-excel"
	"trumetrapla/internal/service/report"
	"trumetrapla/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, reportService *report.Service, genService *generate_excel2.GenerateExcelService, storage *mysql.Storage, rec *metrics.Recorder) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Report-Id"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(rec.Middleware)

	router.Handle("/metrics", rec.Handler())

	settings := form.Settings{
		MaxBytes: cfg.Report.MaxUploadBytes(),
		MaxFiles: cfg.Report.MaxFiles,
		Sheet:    cfg.Report.Sheet,
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/fields", getfields.GetFields(log, reportService))
		r.Post("/columns/suggest", suggest.SuggestColumns(log, reportService))
		r.Post("/sheets", list.ListSheets(log, settings.MaxBytes))

		r.Post("/report", analyze.AnalyzeReport(log, reportService, settings, cfg.RequestTimeout))
		r.Post("/report/excel", generate_excel.GenerateReportExcel(log, reportService, genService, settings, cfg.RequestTimeout))

		r.Route("/admin", func(admin chi.Router) {
			admin.Use(auth.BasicAuth(cfg.Admin.Login, cfg.Admin.Password))

			if storage == nil {
				admin.Get("/import", func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "database source is not configured", http.StatusServiceUnavailable)
				})
				return
			}
			admin.Get("/import", getimport.GetImportReport(log, storage, reportService, cfg.Database.ImportQuery, cfg.RequestTimeout))
		})
	})

	if cfg.FrontendDir != "" {
		mountFrontend(router, log, cfg.FrontendDir)
	}

	return router
}

// mountFrontend serves the built dashboard with a fallback to index.html
// for client side routes. A missing directory only disables it.
func mountFrontend(router *chi.Mux, log *slog.Logger, frontendDir string) {
	if info, err := os.Stat(frontendDir); err != nil || !info.IsDir() {
		log.Warn("frontend directory not found, dashboard disabled", slog.String("path", frontendDir))
		return
	}

	index := filepath.Join(frontendDir, "index.html")
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, index)
	})
}
