package assessment

import (
	"fmt"
	"strings"
)

// Item is the read-only view of an item-bank question the grader needs.
type Item struct {
	ID     string `json:"id"`
	Part   Part   `json:"part"`
	Answer string `json:"answer"`
}

// AnswerSet maps item id to the picked choice. Missing or empty = unanswered.
type AnswerSet map[string]string

// ItemResult is the graded outcome of a single item.
type ItemResult struct {
	ID            string  `json:"id"`
	Part          Part    `json:"part"`
	Picked        *string `json:"picked"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
}

// GradeItems scores answers against the matched items. When order is given
// the output follows it; items it does not name keep item-bank order after.
func GradeItems(answers AnswerSet, items []Item, order []string) ([]ItemResult, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: empty answer set", ErrInvalidInput)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items to grade", ErrInvalidInput)
	}

	ordered := orderItems(items, order)
	out := make([]ItemResult, 0, len(ordered))
	for _, it := range ordered {
		out = append(out, gradeItem(answers, it))
	}
	return out, nil
}

func gradeItem(answers AnswerSet, it Item) ItemResult {
	res := ItemResult{
		ID:            it.ID,
		Part:          it.Part,
		CorrectAnswer: it.Answer,
	}
	if picked, ok := answers[it.ID]; ok && strings.TrimSpace(picked) != "" {
		p := strings.TrimSpace(picked)
		res.Picked = &p
		res.IsCorrect = p == it.Answer
	}
	return res
}

func orderItems(items []Item, order []string) []Item {
	if len(order) == 0 {
		return items
	}
	byID := make(map[string]int, len(items))
	for i, it := range items {
		if _, dup := byID[it.ID]; !dup {
			byID[it.ID] = i
		}
	}
	used := make([]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, id := range order {
		i, ok := byID[id]
		if !ok || used[i] {
			continue
		}
		used[i] = true
		out = append(out, items[i])
	}
	for i, it := range items {
		if used[i] {
			continue
		}
		if first := byID[it.ID]; first != i {
			continue
		}
		used[i] = true
		out = append(out, it)
	}
	return out
}
