// Package upload pushes app export files to a remote RepScore server, for
// machines that hold the exports but cannot reach the database.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meltforce/repscore/internal/importer"
	"github.com/meltforce/repscore/internal/plancodec"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int
	BatchesSent   int

	// Server-side counts summed over every batch.
	importer.Result
}

// Uploader walks an export directory and POSTs each new file to the server
// in batches of workouts.
type Uploader struct {
	client    *Client
	state     *importer.StateDB
	dir       string
	dryRun    bool
	batchSize int
	log       *slog.Logger
	stats     Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *importer.StateDB, dir string, dryRun bool, batchSize int, log *slog.Logger) *Uploader {
	return &Uploader{
		client:    client,
		state:     state,
		dir:       dir,
		dryRun:    dryRun,
		batchSize: batchSize,
		log:       log,
	}
}

// Run uploads every export file that changed since the last run. A file that
// does not parse is counted and skipped; a failed send stops the run so the
// file is retried next time.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := importer.ExportFiles(u.dir)
	if err != nil {
		return &u.stats, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.uploadFile(ctx, path); err != nil {
			return &u.stats, err
		}
	}
	return &u.stats, nil
}

func (u *Uploader) uploadFile(ctx context.Context, path string) error {
	relPath, _ := filepath.Rel(u.dir, path)
	info, err := os.Stat(path)
	if err != nil {
		u.log.Warn("stat failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	hash, err := importer.HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	uploaded, err := u.state.IsImported(relPath, info.Size(), hash)
	if err != nil {
		u.log.Warn("state check failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	doc, err := importer.ReadDocument(path)
	if err != nil {
		u.log.Warn("parse failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	for _, batch := range SplitDocument(doc, u.batchSize) {
		if u.dryRun {
			u.log.Info("dry-run: would send",
				"file", relPath,
				"workouts", len(batch.Workouts),
				"records", batch.Len(),
			)
			continue
		}
		res, err := u.client.SendDocument(ctx, batch)
		if err != nil {
			return fmt.Errorf("sending %s: %w", relPath, err)
		}
		u.stats.Add(res)
		u.stats.BatchesSent++
	}

	if !u.dryRun {
		if err := u.state.MarkImported(relPath, info.Size(), hash, doc.Len()); err != nil {
			u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
		}
	}
	u.stats.FilesUploaded++
	u.log.Info("uploaded file", "file", relPath, "records", doc.Len())
	return nil
}

// SplitDocument cuts doc into batches of at most batchSize workouts. Each
// workout travels with its exercises and sets so the server sees parents
// before children. Templates go with the first batch; records whose workout
// is not in the document go with the last, where the server skips them.
func SplitDocument(doc *importer.Document, batchSize int) []*importer.Document {
	if batchSize <= 0 || len(doc.Workouts) <= batchSize {
		return []*importer.Document{doc}
	}

	var batches []*importer.Document
	batchOf := make(map[string]*importer.Document)
	for i := 0; i < len(doc.Workouts); i += batchSize {
		end := min(i+batchSize, len(doc.Workouts))
		b := &importer.Document{Workouts: doc.Workouts[i:end]}
		for _, w := range b.Workouts {
			if id, ok := w["id"].(string); ok {
				batchOf[id] = b
			}
		}
		batches = append(batches, b)
	}
	batches[0].Templates = doc.Templates

	last := batches[len(batches)-1]
	target := func(rec plancodec.Record) *importer.Document {
		if id, ok := rec["workoutId"].(string); ok {
			if b, ok := batchOf[id]; ok {
				return b
			}
		}
		return last
	}
	for _, e := range doc.Exercises {
		b := target(e)
		b.Exercises = append(b.Exercises, e)
	}
	for _, s := range doc.WorkoutSets {
		b := target(s)
		b.WorkoutSets = append(b.WorkoutSets, s)
	}
	return batches
}
