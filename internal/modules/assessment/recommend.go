package assessment

// EMAAlpha is the weight of each newer attempt in the per-part average.
const EMAAlpha = 0.3

// DefaultHistoryLimit bounds how many recent attempts feed a recommendation.
const DefaultHistoryLimit = 20

// PartAccuracies is one attempt's accuracy per part it touched.
type PartAccuracies map[Part]float64

// Recommendation is a learner's smoothed per-part snapshot.
type Recommendation struct {
	PartAccuracy map[Part]float64 `json:"partAccuracy"`
	PartLevels   map[Part]Level   `json:"partLevels"`
	Predicted    Prediction       `json:"predicted"`
	Attempts     int              `json:"attempts"`
}

// Recommend folds attempts into a per-part EMA. The history arrives
// newest-first, as the attempt store returns it, and is folded oldest to
// newest so the latest attempt carries weight EMAAlpha.
func Recommend(newestFirst []PartAccuracies) Recommendation {
	ema := make(map[Part]float64)
	for i := len(newestFirst) - 1; i >= 0; i-- {
		for p, acc := range newestFirst[i] {
			acc = clampFloat(acc, 0, 1)
			prev, seen := ema[p]
			if !seen {
				ema[p] = acc
				continue
			}
			ema[p] = (1-EMAAlpha)*prev + EMAAlpha*acc
		}
	}

	levels := make(map[Part]Level, len(ema))
	for p, v := range ema {
		levels[p] = ClassifyThreeTier(v)
	}

	return Recommendation{
		PartAccuracy: ema,
		PartLevels:   levels,
		Predicted:    Predict(skillMean(ema, Listening), skillMean(ema, Reading), ProgressProfile),
		Attempts:     len(newestFirst),
	}
}

func skillMean(ema map[Part]float64, s Skill) float64 {
	var sum float64
	n := 0
	for _, p := range PartsOf(s) {
		if v, ok := ema[p]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
