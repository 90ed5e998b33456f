package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/meltforce/repscore/internal/importer"
	"github.com/meltforce/repscore/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "RepScore server URL (e.g. https://repscore.tail1234.ts.net)")
	exportPath := flag.String("path", "", "path to a directory of app export files")
	apiKey := flag.String("api-key", os.Getenv("REPSCORE_API_KEY"), "API key for the ingest endpoint (default $REPSCORE_API_KEY)")
	dryRun := flag.Bool("dry-run", false, "parse and batch but don't send to server")
	batchSize := flag.Int("batch-size", 50, "workouts per ingest request")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repscore-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repscore-upload -server <URL> -path <export dir> [-dry-run] [-batch-size N]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if (*serverURL == "" || *apiKey == "") && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *exportPath)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := importer.OpenStateDB(filepath.Join(homeDir, ".repscore-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil in dry-run mode)
	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey)
		if err := client.Ping(ctx); err != nil {
			log.Error("server not reachable", "server", *serverURL, "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("DRY RUN mode, files will be parsed and batched but not sent")
	}

	uploader := upload.New(client, state, *exportPath, *dryRun, *batchSize, log)
	stats, err := uploader.Run(ctx)
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:        %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:     %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:      %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:      %d\n", stats.FilesErrored)
	fmt.Printf("  Batches sent:       %d\n", stats.BatchesSent)
	fmt.Println()
	fmt.Printf("  Workouts inserted:  %d (%d already stored)\n", stats.WorkoutsInserted, stats.WorkoutsDuplicated)
	fmt.Printf("  Exercises inserted: %d\n", stats.ExercisesInserted)
	fmt.Printf("  Sets inserted:      %d\n", stats.SetsInserted)
	fmt.Printf("  Templates inserted: %d\n", stats.TemplatesInserted)
	fmt.Printf("  Records skipped:    %d\n", stats.RecordsSkipped)
	fmt.Println()
}
