package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/toeiclab/toeic-backend/internal/domain"
	core "github.com/toeiclab/toeic-backend/internal/modules/assessment"
)

// SeedItems inserts count items of one part, keyed "<testKey>-<n>", all with
// answer "A".
func SeedItems(tb testing.TB, ctx context.Context, tx *gorm.DB, testKey, part string, level, count int) []*types.Item {
	tb.Helper()
	out := make([]*types.Item, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, &types.Item{
			ItemKey:  fmt.Sprintf("%s-%s-%d", testKey, part, i),
			Part:     part,
			Level:    level,
			TestKey:  testKey,
			Position: i,
			Answer:   "A",
		})
	}
	if err := tx.WithContext(ctx).Create(&out).Error; err != nil {
		tb.Fatalf("seed items: %v", err)
	}
	return out
}

// SeedAttempt stores an attempt whose per-part accuracies are exactly acc.
// Each part gets ten items so accuracies land on tenths.
func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.AttemptKind, acc map[core.Part]float64, at time.Time) *types.Attempt {
	tb.Helper()

	var (
		items   []core.Item
		answers = core.AnswerSet{}
	)
	for part, a := range acc {
		correct := int(a*10 + 0.5)
		for i := 0; i < 10; i++ {
			id := fmt.Sprintf("%s-%d", part, i)
			items = append(items, core.Item{ID: id, Part: part, Answer: "A"})
			if i < correct {
				answers[id] = "A"
			} else {
				answers[id] = "B"
			}
		}
	}

	res, err := core.Grade(core.GradeInput{Answers: answers, Items: items}, kind.Profile())
	if err != nil {
		tb.Fatalf("seed attempt grade: %v", err)
	}
	row, err := types.NewAttempt(userID, kind, res, at)
	if err != nil {
		tb.Fatalf("seed attempt build: %v", err)
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return row
}
