package assessment

// Level is a discrete proficiency level. The three-tier scale yields 1..3,
// the four-tier practice scale 1..4.
type Level int

// MaxLevel is the highest level any scale produces.
const MaxLevel Level = 4

// Tier boundaries; each is the inclusive lower bound of its tier.
const (
	LevelTwoMin   = 0.55
	LevelThreeMin = 0.70
	LevelFourMin  = 0.85
)

// LevelScale selects one of the two classifiers used by the product.
type LevelScale int

const (
	ThreeTier LevelScale = iota
	FourTier
)

// ClassifyThreeTier is used for placement, progress and per-part levels.
func ClassifyThreeTier(acc float64) Level {
	switch {
	case acc >= LevelThreeMin:
		return 3
	case acc >= LevelTwoMin:
		return 2
	default:
		return 1
	}
}

// ClassifyFourTier is used for single-part practice attempts.
func ClassifyFourTier(acc float64) Level {
	if acc >= LevelFourMin {
		return 4
	}
	return ClassifyThreeTier(acc)
}

// Classify dispatches on the scale.
func (s LevelScale) Classify(acc float64) Level {
	if s == FourTier {
		return ClassifyFourTier(acc)
	}
	return ClassifyThreeTier(acc)
}
