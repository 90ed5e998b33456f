package storage

import (
	"testing"

	"github.com/meltforce/repscore/internal/models"
)

// TestTruncInterval verifies the bucket-to-date_trunc mapping.
func TestTruncInterval(t *testing.T) {
	tests := []struct {
		bucket string
		want   string
	}{
		{"1 week", "week"},
		{"week", "week"},
		{"1 month", "month"},
		{"month", "month"},
		{"anything else", "month"},
	}

	for _, tt := range tests {
		got := truncInterval(tt.bucket)
		if got != tt.want {
			t.Errorf("truncInterval(%q) = %q, want %q", tt.bucket, got, tt.want)
		}
	}
}

// TestMergeVolumeFoldsSameKind verifies rows that resolve to the same kind
// are summed and their average score weighted by set count.
func TestMergeVolumeFoldsSameKind(t *testing.T) {
	var vols []ExerciseVolume
	vols = mergeVolume(vols, ExerciseVolume{Exercise: models.Squat, Sets: 3, Reps: 24, Tonnage: 1200, AvgWorkoutScore: 80})
	vols = mergeVolume(vols, ExerciseVolume{Exercise: models.BenchPress, Sets: 2, Reps: 10, Tonnage: 500, AvgWorkoutScore: 70})
	vols = mergeVolume(vols, ExerciseVolume{Exercise: models.Squat, Sets: 1, Reps: 8, Tonnage: 400, AvgWorkoutScore: 60})

	if len(vols) != 2 {
		t.Fatalf("len(vols) = %d, want 2", len(vols))
	}
	sq := vols[0]
	if sq.Exercise != models.Squat || sq.Sets != 4 || sq.Reps != 32 || sq.Tonnage != 1600 {
		t.Errorf("squat volume = %+v, want 4 sets, 32 reps, 1600 tonnage", sq)
	}
	if sq.AvgWorkoutScore != 75 {
		t.Errorf("squat avg score = %v, want 75", sq.AvgWorkoutScore)
	}
	if vols[1].Exercise != models.BenchPress || vols[1].Sets != 2 {
		t.Errorf("bench volume = %+v, want untouched", vols[1])
	}
}

// TestMergeExerciseStat verifies stats for the same kind are summed.
func TestMergeExerciseStat(t *testing.T) {
	var list []ExerciseStat
	list = mergeExerciseStat(list, ExerciseStat{Exercise: models.BicepCurl, Workouts: 2, Sets: 6})
	list = mergeExerciseStat(list, ExerciseStat{Exercise: models.BicepCurl, Workouts: 1, Sets: 3})
	if len(list) != 1 || list[0].Workouts != 3 || list[0].Sets != 9 {
		t.Errorf("list = %+v, want one bicep-curl entry with 3 workouts and 9 sets", list)
	}
}
