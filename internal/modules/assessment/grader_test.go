package assessment

import (
	"errors"
	"testing"

	"github.com/toeiclab/toeic-backend/internal/platform/apierr"
)

func bankItems() []Item {
	return []Item{
		{ID: "q1", Part: Part1, Answer: "A"},
		{ID: "q2", Part: Part2, Answer: "B"},
		{ID: "q3", Part: Part5, Answer: "C"},
		{ID: "q4", Part: Part7, Answer: "D"},
	}
}

func TestGradeItemsCorrectness(t *testing.T) {
	t.Parallel()
	answers := AnswerSet{"q1": "A", "q2": "C", "q3": "", "missing": "A"}
	got, err := GradeItems(answers, bankItems(), nil)
	if err != nil {
		t.Fatalf("GradeItems: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len=%d want 4", len(got))
	}
	if !got[0].IsCorrect || got[0].Picked == nil || *got[0].Picked != "A" {
		t.Fatalf("q1: %+v", got[0])
	}
	if got[1].IsCorrect || got[1].Picked == nil || *got[1].Picked != "C" || got[1].CorrectAnswer != "B" {
		t.Fatalf("q2: %+v", got[1])
	}
	if got[2].Picked != nil || got[2].IsCorrect {
		t.Fatalf("q3 should be unanswered: %+v", got[2])
	}
	if got[3].Picked != nil || got[3].IsCorrect {
		t.Fatalf("q4 should be unanswered: %+v", got[3])
	}
}

func TestGradeItemsFollowsCallerOrder(t *testing.T) {
	t.Parallel()
	answers := AnswerSet{"q1": "A"}
	order := []string{"q4", "nope", "q2", "q4"}
	got, err := GradeItems(answers, bankItems(), order)
	if err != nil {
		t.Fatalf("GradeItems: %v", err)
	}
	want := []string{"q4", "q2", "q1", "q3"}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got=%s want=%s", i, got[i].ID, id)
		}
	}
}

func TestGradeItemsRejectsEmptyInput(t *testing.T) {
	t.Parallel()
	if _, err := GradeItems(nil, bankItems(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty answers: err=%v", err)
	}
	_, err := GradeItems(AnswerSet{"q1": "A"}, nil, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty items: err=%v", err)
	}
	if !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidInput to wrap apierr.ErrInvalidArgument")
	}
}
