package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/meltforce/repscore/internal/plancodec"
)

// Document is an app export: collections of loosely typed records, each in
// the key/value shape the mobile client persists.
type Document struct {
	Workouts    []plancodec.Record `json:"workouts"`
	Exercises   []plancodec.Record `json:"exercises"`
	WorkoutSets []plancodec.Record `json:"workoutSets"`
	Templates   []plancodec.Record `json:"templates"`
}

// Len returns the total number of records in the document.
func (d *Document) Len() int {
	return len(d.Workouts) + len(d.Exercises) + len(d.WorkoutSets) + len(d.Templates)
}

// ParseDocument reads one export document. Unknown top-level keys are ignored.
func ParseDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing export document: %w", err)
	}
	return &doc, nil
}
