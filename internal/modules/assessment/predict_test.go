package assessment

import "testing"

func TestPredictRoundsHalfUp(t *testing.T) {
	t.Parallel()
	got := Predict(0.5, 0.5, ProgressProfile)
	if got.Listening != 250 || got.Reading != 250 || got.Overall != 500 {
		t.Fatalf("Predict(0.5,0.5)=%+v want 250/250/500", got)
	}
}

func TestPredictClamps(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		l, r    float64
		profile ScoringProfile
		want    Prediction
	}{
		{"perfect", 1, 1, PlacementProfile, Prediction{Overall: 990, Listening: 495, Reading: 495}},
		{"zero_placement", 0, 0, PlacementProfile, Prediction{}},
		{"zero_progress", 0, 0, ProgressProfile, Prediction{}},
		{"zero_practice", 0, 0, PracticeProfile, Prediction{Overall: 10, Listening: 5, Reading: 5}},
		{"single_skill_practice", 1, 0, PracticeProfile, Prediction{Overall: 500, Listening: 495, Reading: 5}},
		{"out_of_range", 1.4, -0.2, ProgressProfile, Prediction{Overall: 495, Listening: 495, Reading: 0}},
		{"tiny_practice", 0.004, 0, PracticeProfile, Prediction{Overall: 10, Listening: 5, Reading: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Predict(tc.l, tc.r, tc.profile); got != tc.want {
				t.Fatalf("got=%+v want=%+v", got, tc.want)
			}
		})
	}
}

func TestRoundToStep(t *testing.T) {
	t.Parallel()
	cases := map[float64]int{
		0:     0,
		2.4:   0,
		2.5:   5,
		247.5: 250,
		344.9: 345,
		495:   495,
	}
	for in, want := range cases {
		if got := roundToStep(in); got != want {
			t.Fatalf("roundToStep(%v)=%d want %d", in, got, want)
		}
	}
}
