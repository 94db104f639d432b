package assessment

// GradeInput is one submission: the answers, the items the bank matched, and
// an optional presentation order of item ids.
type GradeInput struct {
	Answers AnswerSet
	Items   []Item
	Order   []string
}

// GradingResult is the immutable outcome of grading one attempt.
type GradingResult struct {
	Total     int               `json:"total"`
	Correct   int               `json:"correct"`
	Acc       float64           `json:"acc"`
	Listening SkillStat         `json:"listening"`
	Reading   SkillStat         `json:"reading"`
	Level     Level             `json:"level"`
	Predicted Prediction        `json:"predicted"`
	PartStats map[Part]PartStat `json:"partStats"`
	WeakParts []Part            `json:"weakParts"`
	Items     []ItemResult      `json:"items"`
}

// Grade runs grader, aggregator, classifier, predictor and weak-part
// detection in that order.
func Grade(in GradeInput, p ScoringProfile) (*GradingResult, error) {
	results, err := GradeItems(in.Answers, in.Items, in.Order)
	if err != nil {
		return nil, err
	}
	b := Aggregate(results)
	return &GradingResult{
		Total:     b.Total,
		Correct:   b.Correct,
		Acc:       b.Acc,
		Listening: b.Listening,
		Reading:   b.Reading,
		Level:     p.Scale.Classify(b.Acc),
		Predicted: Predict(b.Listening.Acc, b.Reading.Acc, p),
		PartStats: b.Parts,
		WeakParts: WeakParts(b.Parts),
		Items:     results,
	}, nil
}

// PartAccuracies extracts the per-part accuracy of a result, the input of
// the recommendation aggregator.
func (r *GradingResult) PartAccuracies() PartAccuracies {
	if r == nil {
		return nil
	}
	out := make(PartAccuracies, len(r.PartStats))
	for p, ps := range r.PartStats {
		if ps.Total > 0 {
			out[p] = ps.Acc
		}
	}
	return out
}
