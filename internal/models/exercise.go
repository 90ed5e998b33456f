package models

import (
	"errors"
	"fmt"
	"strings"
)

// ExerciseKind identifies one of the tracked strength exercises.
type ExerciseKind int

const (
	BenchPress ExerciseKind = iota
	Squat
	BicepCurl
	LatPulldown
	SeatedRows
	TricepExtension
)

// ErrUnknownExercise is returned when a string does not name a known exercise.
var ErrUnknownExercise = errors.New("unknown exercise")

type exerciseInfo struct {
	name      string // variant name, e.g. BENCH_PRESS
	canonical string // storage form, e.g. bench-press
	romFactor float64
}

var exerciseCatalog = [...]exerciseInfo{
	BenchPress:      {"BENCH_PRESS", "bench-press", 0.28},
	Squat:           {"SQUAT", "squat", 0.53},
	BicepCurl:       {"BICEP_CURL", "bicep-curl", 0.15},
	LatPulldown:     {"LAT_PULLDOWN", "lat-pulldown", 0.60},
	SeatedRows:      {"SEATED_ROWS", "seated-rows", 0.40},
	TricepExtension: {"TRICEP_EXTENSION", "tricep-extension", 0.18},
}

// exerciseByName maps upper-cased variant names to kinds.
var exerciseByName = func() map[string]ExerciseKind {
	m := make(map[string]ExerciseKind, len(exerciseCatalog))
	for i, info := range exerciseCatalog {
		m[info.name] = ExerciseKind(i)
	}
	return m
}()

// AllExerciseKinds returns every kind in declaration order.
func AllExerciseKinds() []ExerciseKind {
	kinds := make([]ExerciseKind, len(exerciseCatalog))
	for i := range exerciseCatalog {
		kinds[i] = ExerciseKind(i)
	}
	return kinds
}

// Valid reports whether k is one of the declared kinds.
func (k ExerciseKind) Valid() bool {
	return k >= 0 && int(k) < len(exerciseCatalog)
}

// String returns the canonical storage form ("bench-press").
func (k ExerciseKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("exercise(%d)", int(k))
	}
	return exerciseCatalog[k].canonical
}

// Name returns the variant name ("BENCH_PRESS").
func (k ExerciseKind) Name() string {
	if !k.Valid() {
		return ""
	}
	return exerciseCatalog[k].name
}

// ROMFactor returns how strongly range of motion weighs into the difficulty of k.
func (k ExerciseKind) ROMFactor() float64 {
	if !k.Valid() {
		return 0
	}
	return exerciseCatalog[k].romFactor
}

// ParseExerciseKind resolves a stored exercise string. Matching ignores case and
// treats hyphens as underscores, so "bench-press", "BENCH-PRESS" and "bench_press"
// all resolve to BenchPress.
func ParseExerciseKind(s string) (ExerciseKind, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	if k, ok := exerciseByName[key]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExercise, s)
}

// MarshalText encodes the canonical form so kinds serialize as strings in JSON.
func (k ExerciseKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownExercise, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText accepts any form ParseExerciseKind accepts.
func (k *ExerciseKind) UnmarshalText(b []byte) error {
	parsed, err := ParseExerciseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// CatalogEntry describes one exercise kind for clients.
type CatalogEntry struct {
	Kind      ExerciseKind `json:"kind"`
	Name      string       `json:"name"`
	ROMFactor float64      `json:"romFactor"`
}

// Catalog lists every exercise kind in declaration order.
func Catalog() []CatalogEntry {
	kinds := AllExerciseKinds()
	out := make([]CatalogEntry, len(kinds))
	for i, k := range kinds {
		out[i] = CatalogEntry{Kind: k, Name: k.Name(), ROMFactor: k.ROMFactor()}
	}
	return out
}
