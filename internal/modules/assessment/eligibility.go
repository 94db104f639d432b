package assessment

import "time"

// DefaultEligibilityWindow is the cooldown between a qualifying practice
// attempt and the next progress test.
const DefaultEligibilityWindow = 5 * 24 * time.Hour

// EligibilityReason names the state of the progress-test gate.
type EligibilityReason string

const (
	ReasonNoPractice              EligibilityReason = "ineligible_no_practice"
	ReasonNoPracticeAfterProgress EligibilityReason = "ineligible_no_practice_after_progress"
	ReasonWaitingWindow           EligibilityReason = "waiting_window"
	ReasonEligible                EligibilityReason = "eligible"
)

// EligibilityInput is the slice of attempt history the gate reads.
type EligibilityInput struct {
	PracticeAt      []time.Time
	LastProgressAt  *time.Time
	LastSuggestedAt *time.Time
	Window          time.Duration
	Now             time.Time
}

// Eligibility is the gate's answer for one query.
type Eligibility struct {
	Eligible       bool              `json:"eligible"`
	Reason         EligibilityReason `json:"reason"`
	Since          *time.Time        `json:"since,omitempty"`
	NextEligibleAt *time.Time        `json:"nextEligibleAt,omitempty"`
	RemainingMs    *int64            `json:"remainingMs,omitempty"`
	WindowMinutes  int64             `json:"windowMinutes"`
	SuggestedAt    *time.Time        `json:"suggestedAt,omitempty"`
}

// EvaluateEligibility decides whether the learner may take a progress test.
// LastSuggestedAt is echoed back and never changes the outcome.
func EvaluateEligibility(in EligibilityInput) Eligibility {
	window := in.Window
	if window <= 0 {
		window = DefaultEligibilityWindow
	}
	out := Eligibility{
		WindowMinutes: int64(window / time.Minute),
		SuggestedAt:   in.LastSuggestedAt,
	}

	if len(in.PracticeAt) == 0 {
		out.Reason = ReasonNoPractice
		return out
	}

	var after time.Time
	if in.LastProgressAt != nil {
		after = *in.LastProgressAt
	}
	anchor, ok := latestAfter(in.PracticeAt, after, in.LastProgressAt != nil)
	if !ok {
		out.Reason = ReasonNoPracticeAfterProgress
		return out
	}

	next := anchor.Add(window)
	out.Since = &anchor
	out.NextEligibleAt = &next
	if !in.Now.Before(next) {
		out.Eligible = true
		out.Reason = ReasonEligible
		return out
	}
	remaining := next.Sub(in.Now).Milliseconds()
	out.Reason = ReasonWaitingWindow
	out.RemainingMs = &remaining
	return out
}

func latestAfter(ts []time.Time, after time.Time, strict bool) (time.Time, bool) {
	var best time.Time
	found := false
	for _, t := range ts {
		if strict && !t.After(after) {
			continue
		}
		if !found || t.After(best) {
			best = t
			found = true
		}
	}
	return best, found
}
