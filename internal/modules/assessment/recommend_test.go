package assessment

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRecommendFoldsOldestToNewest(t *testing.T) {
	t.Parallel()
	// newest-first as supplied by the attempt store: 0.9 is the latest.
	history := []PartAccuracies{
		{Part1: 0.9},
		{Part1: 0.6},
		{Part1: 0.2},
	}
	rec := Recommend(history)
	if !approx(rec.PartAccuracy[Part1], 0.494) {
		t.Fatalf("ema=%v want 0.494", rec.PartAccuracy[Part1])
	}
	if rec.PartLevels[Part1] != 1 {
		t.Fatalf("level=%d want 1", rec.PartLevels[Part1])
	}
	if rec.Attempts != 3 {
		t.Fatalf("attempts=%d want 3", rec.Attempts)
	}
	// listening mean 0.494 -> 244.53 -> 245; no reading parts -> 0
	want := Prediction{Overall: 245, Listening: 245, Reading: 0}
	if rec.Predicted != want {
		t.Fatalf("predicted=%+v want %+v", rec.Predicted, want)
	}
}

func TestRecommendIntermediateSteps(t *testing.T) {
	t.Parallel()
	two := Recommend([]PartAccuracies{{Part1: 0.6}, {Part1: 0.2}})
	if !approx(two.PartAccuracy[Part1], 0.32) {
		t.Fatalf("ema=%v want 0.32", two.PartAccuracy[Part1])
	}
	one := Recommend([]PartAccuracies{{Part1: 0.2}})
	if !approx(one.PartAccuracy[Part1], 0.2) {
		t.Fatalf("ema=%v want 0.2", one.PartAccuracy[Part1])
	}
}

func TestRecommendPartsAreIndependent(t *testing.T) {
	t.Parallel()
	history := []PartAccuracies{
		{Part5: 1.0},
		{Part2: 0.5, Part5: 0.5},
		{Part2: 0.9},
	}
	rec := Recommend(history)
	// part.2: 0.9 then 0.5 -> 0.78; part.5: 0.5 then 1.0 -> 0.65
	if !approx(rec.PartAccuracy[Part2], 0.78) || !approx(rec.PartAccuracy[Part5], 0.65) {
		t.Fatalf("ema=%v", rec.PartAccuracy)
	}
	if rec.PartLevels[Part2] != 3 || rec.PartLevels[Part5] != 2 {
		t.Fatalf("levels=%v", rec.PartLevels)
	}
	// listening 0.78*495=386.1 -> 385; reading 0.65*495=321.75 -> 320
	want := Prediction{Overall: 705, Listening: 385, Reading: 320}
	if rec.Predicted != want {
		t.Fatalf("predicted=%+v want %+v", rec.Predicted, want)
	}
}

func TestRecommendAveragesSkillParts(t *testing.T) {
	t.Parallel()
	rec := Recommend([]PartAccuracies{{Part1: 1.0, Part3: 0.0}})
	if rec.Predicted.Listening != 250 {
		t.Fatalf("listening=%d want 250", rec.Predicted.Listening)
	}
}

func TestRecommendEmptyHistory(t *testing.T) {
	t.Parallel()
	rec := Recommend(nil)
	if len(rec.PartAccuracy) != 0 || len(rec.PartLevels) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", rec)
	}
	if rec.Predicted != (Prediction{}) {
		t.Fatalf("predicted=%+v want zero", rec.Predicted)
	}
}
