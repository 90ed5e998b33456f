package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/meltforce/repscore/internal/config"
	"github.com/meltforce/repscore/internal/importer"
	"github.com/meltforce/repscore/internal/metrics"
	"github.com/meltforce/repscore/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to a directory of app export files (required)")
	stateDir := flag.String("state-dir", "", "where to remember imported files (default ~/.repscore-import)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repscore-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repscore-import -config config.yaml -path /path/to/exports [-state-dir DIR] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode, no data will be written to the database")
	}

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".repscore-import")
	}
	state, err := importer.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Import metrics are not scraped; the counters only back the log summary.
	instr := metrics.NewManager("repscore", "import", prometheus.NewRegistry())
	loader := importer.NewLoader(db, log, instr, *dryRun)
	imp := importer.New(loader, state, log, *dryRun)

	var logID int64
	if !*dryRun {
		logID, err = db.InsertImportLog(ctx, storage.ImportLog{Source: "file", Status: "running"})
		if err != nil {
			log.Warn("failed to create import log", "error", err)
		}
	}

	start := time.Now()
	stats, importErr := imp.Import(ctx, *exportPath)
	finishImportLog(ctx, db, log, logID, stats, importErr, time.Since(start))

	printStats(log, stats)
	if importErr != nil {
		log.Error("import failed", "error", importErr)
		os.Exit(1)
	}
	log.Info("import complete")
}

// finishImportLog moves the import log entry from "running" to its outcome.
func finishImportLog(ctx context.Context, db *storage.DB, log *slog.Logger, id int64, stats *importer.Stats, importErr error, elapsed time.Duration) {
	if id == 0 {
		return
	}
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}
	durationMs := int(elapsed.Milliseconds())

	err := db.UpdateImportLog(ctx, id, storage.ImportLog{
		Status:            status,
		WorkoutsReceived:  stats.WorkoutsReceived,
		WorkoutsInserted:  stats.WorkoutsInserted,
		ExercisesInserted: stats.ExercisesInserted,
		SetsInserted:      stats.SetsInserted,
		TemplatesInserted: stats.TemplatesInserted,
		RecordsSkipped:    stats.RecordsSkipped,
		DurationMs:        &durationMs,
		ErrorMessage:      errMsg,
	})
	if err != nil {
		log.Warn("failed to update import log", "id", id, "error", err)
	}
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"workouts_received", stats.WorkoutsReceived,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_duplicated", stats.WorkoutsDuplicated,
		"exercises_inserted", stats.ExercisesInserted,
		"sets_inserted", stats.SetsInserted,
		"templates_inserted", stats.TemplatesInserted,
		"records_skipped", stats.RecordsSkipped,
	)
}
