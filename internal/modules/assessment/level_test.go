package assessment

import "testing"

func TestClassifyThreeTier(t *testing.T) {
	t.Parallel()
	cases := []struct {
		acc  float64
		want Level
	}{
		{0, 1},
		{0.5499, 1},
		{0.55, 2},
		{0.6999, 2},
		{0.70, 3},
		{0.85, 3},
		{1, 3},
	}
	for _, tc := range cases {
		if got := ClassifyThreeTier(tc.acc); got != tc.want {
			t.Fatalf("ClassifyThreeTier(%v)=%d want %d", tc.acc, got, tc.want)
		}
	}
}

func TestClassifyFourTier(t *testing.T) {
	t.Parallel()
	cases := []struct {
		acc  float64
		want Level
	}{
		{0, 1},
		{0.55, 2},
		{0.70, 3},
		{0.8499, 3},
		{0.85, 4},
		{1, 4},
	}
	for _, tc := range cases {
		if got := ClassifyFourTier(tc.acc); got != tc.want {
			t.Fatalf("ClassifyFourTier(%v)=%d want %d", tc.acc, got, tc.want)
		}
	}
}

func TestClassifiersAreMonotonic(t *testing.T) {
	t.Parallel()
	for _, scale := range []LevelScale{ThreeTier, FourTier} {
		prev := scale.Classify(0)
		for i := 1; i <= 1000; i++ {
			cur := scale.Classify(float64(i) / 1000)
			if cur < prev {
				t.Fatalf("scale %d decreased at acc=%v: %d -> %d", scale, float64(i)/1000, prev, cur)
			}
			prev = cur
		}
	}
}
