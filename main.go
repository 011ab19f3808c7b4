package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shershah1024/luna-student-v-5-sub005/internal/api"
	"github.com/shershah1024/luna-student-v-5-sub005/internal/config"
	"github.com/shershah1024/luna-student-v-5-sub005/internal/database"
	"github.com/shershah1024/luna-student-v-5-sub005/internal/excel"
	"github.com/shershah1024/luna-student-v-5-sub005/internal/progress"
	"github.com/shershah1024/luna-student-v-5-sub005/internal/scheduler"
)

func main() {
	importFile := flag.String("import", "", "import a task word list from an xlsx/csv file and exit")
	importTask := flag.String("task", "", "task id for -import")
	importCourse := flag.String("course", "", "course id for -import")
	flag.Parse()

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.Connect(databaseOptions(cfg))
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	items := database.NewItemRepository(db)
	completions := database.NewCompletionRepository(db)
	tasks := database.NewTaskRepository(db)
	engine := progress.New(items, completions, tasks, logger)

	if *importFile != "" {
		runImport(logger, tasks, *importFile, *importTask, *importCourse)
		return
	}

	sched := scheduler.New(engine, logger, cfg.ReconcileInterval)
	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(engine, logger)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	api.RegisterRoutes(mux, handler)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           api.Logging(logger)(api.CORS(mux)),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}

func databaseOptions(cfg *config.Config) database.Options {
	if cfg.DBType == "postgres" {
		return database.Options{Driver: "postgres", DSN: cfg.DatabaseURL}
	}
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	return database.Options{Driver: "sqlite3", DSN: cfg.SQLitePath}
}

func runImport(logger *slog.Logger, tasks *database.TaskRepository, file, taskID, courseID string) {
	importCfg := excel.DefaultImportConfig()
	importCfg.FilePath = file
	importCfg.TaskID = taskID
	importCfg.CourseID = courseID

	importer := excel.NewImporter(tasks)
	result, err := importer.ImportWordList(context.Background(), importCfg)
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
	logger.Info("import finished",
		"processed", result.TotalProcessed,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	for _, e := range result.Errors {
		logger.Warn("import row error", "detail", e)
	}
}
