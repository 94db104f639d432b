package assessment

import "math"

const (
	SkillMaxScore   = 495
	OverallMaxScore = 990
	ScoreStep       = 5
)

// Prediction is a predicted scaled TOEIC score.
type Prediction struct {
	Overall   int `json:"overall"`
	Listening int `json:"listening"`
	Reading   int `json:"reading"`
}

// ScoringProfile carries the per-flow differences of the shared pipeline.
type ScoringProfile struct {
	Name         string
	SkillFloor   int
	OverallFloor int
	Scale        LevelScale
}

var (
	PlacementProfile = ScoringProfile{Name: "placement", Scale: ThreeTier}
	ProgressProfile  = ScoringProfile{Name: "progress", Scale: ThreeTier}
	// Practice floors keep a single-part attempt from displaying a zero score.
	PracticeProfile = ScoringProfile{Name: "practice", SkillFloor: 5, OverallFloor: 10, Scale: FourTier}
)

// Predict maps skill accuracies to scaled scores under the profile's clamps.
func Predict(listeningAcc, readingAcc float64, p ScoringProfile) Prediction {
	l := skillScore(listeningAcc, p.SkillFloor)
	r := skillScore(readingAcc, p.SkillFloor)
	return Prediction{
		Overall:   clampInt(roundToStep(float64(l+r)), p.OverallFloor, OverallMaxScore),
		Listening: l,
		Reading:   r,
	}
}

func skillScore(acc float64, floor int) int {
	raw := clampFloat(acc, 0, 1) * SkillMaxScore
	return clampInt(roundToStep(raw), floor, SkillMaxScore)
}

// roundToStep rounds half-up to the nearest multiple of ScoreStep.
func roundToStep(x float64) int {
	return int(math.Floor(x/ScoreStep+0.5)) * ScoreStep
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
