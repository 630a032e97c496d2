package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clubelocal/partners-cli/internal/fetcher"
	"github.com/clubelocal/partners-cli/internal/importer"
	"github.com/clubelocal/partners-cli/internal/model"
	"github.com/clubelocal/partners-cli/internal/store"
	"github.com/clubelocal/partners-cli/internal/sweep"
)

var servePort int

// serveState tracks the import currently owned by the HTTP surface. One
// import runs at a time; uploads while one is active are rejected.
type serveState struct {
	mu         sync.Mutex
	importing  bool
	lastReport *model.ImportReport
	sweeper    *sweep.Sweeper
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the import HTTP server",
	Long:  "Exposes spreadsheet upload, run history, and sweep progress over HTTP for the directory front end.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		router := buildRouter(ctx, &serveState{}, st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func buildRouter(ctx context.Context, state *serveState, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/imports", func(w http.ResponseWriter, req *http.Request) {
		handleImportUpload(ctx, state, st, w, req)
	})

	r.Get("/imports/last", func(w http.ResponseWriter, _ *http.Request) {
		state.mu.Lock()
		report := state.lastReport
		state.mu.Unlock()
		if report == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no import has run"})
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	r.Get("/imports/last/errors.xlsx", func(w http.ResponseWriter, req *http.Request) {
		state.mu.Lock()
		report := state.lastReport
		state.mu.Unlock()
		if report == nil || len(report.Failures) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no failures to export"})
			return
		}

		path := filepath.Join(os.TempDir(), "partners-erros-"+report.RunID+".xlsx")
		if err := importer.WriteErrorSheet(report, path); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="erros.xlsx"`)
		http.ServeFile(w, req, path)
	})

	r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), 50)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if runs == nil {
			runs = []model.ImportRun{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/sweep/status", func(w http.ResponseWriter, _ *http.Request) {
		state.mu.Lock()
		sweeper := state.sweeper
		state.mu.Unlock()
		if sweeper == nil {
			writeJSON(w, http.StatusOK, sweep.Status{})
			return
		}
		writeJSON(w, http.StatusOK, sweeper.Status())
	})

	return r
}

// handleImportUpload accepts a multipart spreadsheet upload and starts the
// import in the background. The caller polls /runs and /sweep/status.
func handleImportUpload(ctx context.Context, state *serveState, st store.Store, w http.ResponseWriter, req *http.Request) {
	state.mu.Lock()
	if state.importing {
		state.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"error": "an import is already running"})
		return
	}
	state.importing = true
	state.mu.Unlock()

	release := func() {
		state.mu.Lock()
		state.importing = false
		state.mu.Unlock()
	}

	file, fileHeader, err := req.FormFile("file")
	if err != nil {
		release()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field is required"})
		return
	}
	defer file.Close() //nolint:errcheck

	tmp, err := os.CreateTemp("", "partners-upload-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		release()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		release()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	tmp.Close() //nolint:errcheck

	header, rows, err := fetcher.ReadFile(tmp.Name())
	if err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		release()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	geoClient := initGeocodeClient()
	sweeper := sweep.New(st, geoClient, cfg.Sweep.Limit, cfg.Sweep.Delay())
	runner := importer.NewRunner(st, initCEPClient(), geoClient, initPlacesClient(),
		cfg.Import, importer.WithSweeper(sweeper))

	state.mu.Lock()
	state.sweeper = sweeper
	state.mu.Unlock()

	go func() {
		defer release()
		defer os.Remove(tmp.Name()) //nolint:errcheck

		report, err := runner.Run(ctx, fileHeader.Filename, header, rows)
		if err != nil {
			zap.L().Error("upload import failed", zap.String("file", fileHeader.Filename), zap.Error(err))
		}
		if report != nil {
			state.mu.Lock()
			state.lastReport = report
			state.mu.Unlock()
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "accepted",
		"file":   fileHeader.Filename,
		"rows":   len(rows),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
