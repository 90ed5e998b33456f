package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Stats tracks import progress across files.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	Result
}

// Importer reads export documents (*.json, *.json.gz) from a directory and
// loads them.
type Importer struct {
	loader *Loader
	state  *StateDB
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. state may be nil, in which case every file is
// imported on every run.
func New(loader *Loader, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{loader: loader, state: state, log: log, dryRun: dryRun}
}

// Import processes every export file under dir, in name order.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := ExportFiles(dir)
	if err != nil {
		return &imp.stats, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, dir, path); err != nil {
			return &imp.stats, err
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, dir, path string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = path
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}

	var hash string
	if imp.state != nil {
		hash, err = HashFile(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", rel, err)
		}
		done, err := imp.state.IsImported(rel, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("checking state for %s: %w", rel, err)
		}
		if done {
			imp.log.Debug("skipping unchanged file", "file", rel)
			imp.stats.FilesSkipped++
			return nil
		}
	}

	doc, err := ReadDocument(path)
	if err != nil {
		imp.log.Warn("parse failed", "file", rel, "error", err)
		imp.stats.FilesErrored++
		return nil
	}

	res, err := imp.loader.Load(ctx, doc)
	imp.stats.Add(res)
	if err != nil {
		return fmt.Errorf("importing %s: %w", rel, err)
	}
	imp.stats.FilesProcessed++
	imp.log.Info("imported file", "file", rel,
		"workouts", res.WorkoutsInserted, "sets", res.SetsInserted, "skipped", res.RecordsSkipped)

	if imp.state != nil && !imp.dryRun {
		if err := imp.state.MarkImported(rel, info.Size(), hash, doc.Len()); err != nil {
			return fmt.Errorf("marking %s imported: %w", rel, err)
		}
	}
	return nil
}
