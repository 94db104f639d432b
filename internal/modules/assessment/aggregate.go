package assessment

// Stat is a correct/total tally with its accuracy.
type Stat struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	Acc     float64 `json:"acc"`
}

// PartStat and SkillStat share the tally shape.
type (
	PartStat  = Stat
	SkillStat = Stat
)

// Accuracy returns correct/total, or 0 for an empty bucket.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func (s *Stat) add(correct bool) {
	s.Total++
	if correct {
		s.Correct++
	}
}

func (s *Stat) finish() {
	s.Acc = Accuracy(s.Correct, s.Total)
}

// Breakdown is the skill and part split of a graded item list.
type Breakdown struct {
	Total     int
	Correct   int
	Acc       float64
	Listening SkillStat
	Reading   SkillStat
	Parts     map[Part]PartStat
}

// Aggregate tallies results into skill areas and per-part buckets. Items of
// an unknown part count toward the overall totals and their own part only.
func Aggregate(results []ItemResult) Breakdown {
	b := Breakdown{Parts: make(map[Part]PartStat)}
	for _, r := range results {
		b.Total++
		if r.IsCorrect {
			b.Correct++
		}

		ps := b.Parts[r.Part]
		ps.add(r.IsCorrect)
		b.Parts[r.Part] = ps

		switch skill, _ := SkillOf(r.Part); skill {
		case Listening:
			b.Listening.add(r.IsCorrect)
		case Reading:
			b.Reading.add(r.IsCorrect)
		}
	}
	b.Acc = Accuracy(b.Correct, b.Total)
	b.Listening.finish()
	b.Reading.finish()
	for p, ps := range b.Parts {
		ps.finish()
		b.Parts[p] = ps
	}
	return b
}
