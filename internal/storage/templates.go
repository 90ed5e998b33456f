package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/plancodec"
)

// InsertTemplate stores a template. The plan is written in its record form
// so it reads back through the same decoder clients use. Returns true if
// inserted, false if a template with the same ID already exists.
func (db *DB) InsertTemplate(ctx context.Context, t models.WorkoutTemplate) (bool, error) {
	plan, err := json.Marshal(plancodec.EncodePlan(t.Plan))
	if err != nil {
		return false, fmt.Errorf("encoding plan of template %s: %w", t.ID, err)
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_templates (id, name, plan, created_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT DO NOTHING`,
		t.ID, t.Name, plan, t.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("inserting template: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetTemplate returns one template by ID.
func (db *DB) GetTemplate(ctx context.Context, id string) (*models.WorkoutTemplate, error) {
	var (
		name      string
		plan      []byte
		createdAt *time.Time
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, plan, created_at FROM workout_templates WHERE id = $1`,
		id).Scan(&id, &name, &plan, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying template: %w", err)
	}
	t, err := templateFromRow(id, name, plan, createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTemplates returns all templates, newest first. Templates whose stored
// plan no longer decodes are skipped and counted in the second return value.
func (db *DB) ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, int, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, plan, created_at
		 FROM workout_templates
		 ORDER BY created_at DESC NULLS LAST, name ASC`)
	if err != nil {
		return nil, 0, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var (
		result  []models.WorkoutTemplate
		skipped int
	)
	for rows.Next() {
		var (
			id, name  string
			plan      []byte
			createdAt *time.Time
		)
		if err := rows.Scan(&id, &name, &plan, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scanning template: %w", err)
		}
		t, err := templateFromRow(id, name, plan, createdAt)
		if err != nil {
			skipped++
			continue
		}
		result = append(result, t)
	}
	return result, skipped, rows.Err()
}

// templateFromRow rebuilds a template from its columns via the record decoder.
func templateFromRow(id, name string, plan []byte, createdAt *time.Time) (models.WorkoutTemplate, error) {
	var items []any
	if err := json.Unmarshal(plan, &items); err != nil {
		return models.WorkoutTemplate{}, fmt.Errorf("template %s: stored plan: %w", id, err)
	}
	rec := plancodec.Record{"id": id, "name": name, "plan": items}
	if createdAt != nil {
		rec["createdAt"] = *createdAt
	}
	return plancodec.DecodeTemplate(rec)
}
