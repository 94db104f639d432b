package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toeiclab/toeic-backend/internal/data/repos"
	"github.com/toeiclab/toeic-backend/internal/data/repos/testutil"
	types "github.com/toeiclab/toeic-backend/internal/domain"
	core "github.com/toeiclab/toeic-backend/internal/modules/assessment"
	"github.com/toeiclab/toeic-backend/internal/platform/apierr"
	"github.com/toeiclab/toeic-backend/internal/platform/ctxutil"
	"github.com/toeiclab/toeic-backend/internal/realtime"
	"github.com/toeiclab/toeic-backend/internal/realtime/bus"
)

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	db              *gorm.DB
	clock           *fakeClock
	bus             *bus.MemoryBus
	attempts        AttemptService
	recommendations RecommendationService
	eligibility     EligibilityService
	items           ItemService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	logg := testutil.Logger(t)
	clock := &fakeClock{now: t0}
	events := bus.NewMemoryBus()

	itemRepo := repos.NewItemRepo(db, logg)
	attemptRepo := repos.NewAttemptRepo(db, logg)
	profileRepo := repos.NewLearnerProfileRepo(db, logg)

	rec := NewRecommendationService(db, logg, attemptRepo, profileRepo, events, 0, clock.Now)
	return &harness{
		db:              db,
		clock:           clock,
		bus:             events,
		attempts:        NewAttemptService(db, logg, itemRepo, attemptRepo, profileRepo, rec, events, 0, clock.Now),
		recommendations: rec,
		eligibility:     NewEligibilityService(db, logg, attemptRepo, profileRepo, events, 0, clock.Now),
		items:           NewItemService(logg, itemRepo),
	}
}

func wantStatus(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %d %s, got nil", status, code)
	}
	gotStatus, gotCode := apierr.StatusOf(err)
	if gotStatus != status || gotCode != code {
		t.Fatalf("status: want=%d/%s got=%d/%s (%v)", status, code, gotStatus, gotCode, err)
	}
}

func eventTypes(b *bus.MemoryBus) []realtime.EventType {
	var out []realtime.EventType
	for _, ev := range b.Events() {
		out = append(out, ev.Type)
	}
	return out
}

func TestSubmitPlacementOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()

	testutil.SeedItems(t, ctx, h.db, "placement-1", "part.1", 1, 2)
	testutil.SeedItems(t, ctx, h.db, "placement-1", "part.5", 1, 2)

	in := SubmitInput{
		TestKey: "placement-1",
		Answers: map[string]string{
			"placement-1-part.1-1": "A",
			"placement-1-part.1-2": "B",
			"placement-1-part.5-1": "A",
			"placement-1-part.5-2": "",
		},
	}
	out, err := h.attempts.Submit(ctx, user, types.AttemptPlacement, in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Result.Total != 4 || out.Result.Correct != 2 {
		t.Fatalf("result: got total=%d correct=%d", out.Result.Total, out.Result.Correct)
	}
	want := core.Prediction{Overall: 500, Listening: 250, Reading: 250}
	if out.Result.Predicted != want {
		t.Fatalf("predicted: want=%+v got=%+v", want, out.Result.Predicted)
	}
	if out.Recommendation != nil {
		t.Fatalf("placement must not produce a recommendation")
	}
	if out.Attempt.TestKey != "placement-1" || out.Attempt.Kind != types.AttemptPlacement {
		t.Fatalf("attempt row: %+v", out.Attempt)
	}

	_, err = h.attempts.Submit(ctx, user, types.AttemptPlacement, in)
	wantStatus(t, err, http.StatusConflict, CodePlacementTaken)

	got := eventTypes(h.bus)
	if len(got) != 1 || got[0] != realtime.EventAttemptGraded {
		t.Fatalf("events: %v", got)
	}
}

func TestSubmitValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()
	testutil.SeedItems(t, ctx, h.db, "practice-5", "part.5", 2, 2)

	cases := []struct {
		name string
		kind types.AttemptKind
		in   SubmitInput
	}{
		{"empty answers", types.AttemptPractice, SubmitInput{Part: "5"}},
		{"practice without part", types.AttemptPractice, SubmitInput{Answers: map[string]string{"x": "A"}}},
		{"bad part", types.AttemptPractice, SubmitInput{Part: "part.9", Answers: map[string]string{"x": "A"}}},
		{"bad level", types.AttemptPractice, SubmitInput{Part: "5", Level: 7, Answers: map[string]string{"x": "A"}}},
		{"unknown kind", types.AttemptKind("final"), SubmitInput{Answers: map[string]string{"x": "A"}}},
		{"no matching items", types.AttemptPlacement, SubmitInput{Answers: map[string]string{"nope": "A"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.attempts.Submit(ctx, user, tc.kind, tc.in)
			if !errors.Is(err, core.ErrInvalidInput) {
				t.Fatalf("want invalid input, got %v", err)
			}
			wantStatus(t, err, http.StatusBadRequest, "invalid_input")
		})
	}

	if _, err := h.attempts.Submit(ctx, uuid.Nil, types.AttemptPractice, SubmitInput{}); !errors.Is(err, apierr.ErrUnauthorized) {
		t.Fatalf("nil user: want unauthorized, got %v", err)
	}
}

func TestSubmitPracticeUpdatesRecommendation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()
	testutil.SeedItems(t, ctx, h.db, "practice-5", "part.5", 2, 4)
	testutil.SeedItems(t, ctx, h.db, "practice-5b", "part.5", 3, 4)

	out, err := h.attempts.Submit(ctx, user, types.AttemptPractice, SubmitInput{
		Part:  "5",
		Level: 2,
		Answers: map[string]string{
			"practice-5-part.5-1": "A",
			"practice-5-part.5-2": "A",
			"practice-5-part.5-3": "A",
			"practice-5-part.5-4": "C",
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Result.Total != 4 || out.Result.Acc != 0.75 {
		t.Fatalf("result: total=%d acc=%v", out.Result.Total, out.Result.Acc)
	}
	if out.Attempt.Part != "part.5" || out.Attempt.RequestedLevel != 2 {
		t.Fatalf("attempt row: %+v", out.Attempt)
	}
	if out.Recommendation == nil || out.Recommendation.Attempts != 1 {
		t.Fatalf("recommendation: %+v", out.Recommendation)
	}
	if got := out.Recommendation.PartAccuracy[core.Part5]; got != 0.75 {
		t.Fatalf("part.5 ema: want=0.75 got=%v", got)
	}

	snap, err := h.recommendations.Get(ctx, user)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.ComputedAt == nil || !snap.ComputedAt.Equal(t0) || snap.Attempts != 1 {
		t.Fatalf("stored snapshot: %+v", snap)
	}

	got := eventTypes(h.bus)
	if len(got) != 2 || got[0] != realtime.EventAttemptGraded || got[1] != realtime.EventRecommendationUpdated {
		t.Fatalf("events: %v", got)
	}
}

func TestSubmitPracticeWithExplicitOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()
	testutil.SeedItems(t, ctx, h.db, "p", "part.6", 1, 3)

	out, err := h.attempts.Submit(ctx, user, types.AttemptPractice, SubmitInput{
		Part:    "part.6",
		ItemIDs: []string{"p-part.6-3", "p-part.6-1", "p-part.6-3", "missing"},
		Answers: map[string]string{"p-part.6-1": "A"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	items := out.Result.Items
	if len(items) != 2 || items[0].ID != "p-part.6-3" || items[1].ID != "p-part.6-1" {
		t.Fatalf("items: %+v", items)
	}
	if items[0].Picked != nil || !items[1].IsCorrect {
		t.Fatalf("grading: %+v", items)
	}
}

func TestProgressGate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()
	testutil.SeedItems(t, ctx, h.db, "progress-1", "part.2", 1, 2)
	testutil.SeedItems(t, ctx, h.db, "practice-2", "part.2", 1, 2)

	progress := SubmitInput{TestKey: "progress-1", Answers: map[string]string{"progress-1-part.2-1": "A"}}
	practice := SubmitInput{Part: "2", Answers: map[string]string{"practice-2-part.2-1": "A"}}

	_, err := h.attempts.Submit(ctx, user, types.AttemptProgress, progress)
	wantStatus(t, err, http.StatusConflict, CodeProgressNotEligible)

	if _, err := h.attempts.Submit(ctx, user, types.AttemptPractice, practice); err != nil {
		t.Fatalf("practice: %v", err)
	}

	el, err := h.eligibility.Check(ctx, user)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if el.Eligible || el.Reason != core.ReasonWaitingWindow || el.RemainingMs == nil || *el.RemainingMs != (5*24*time.Hour).Milliseconds() {
		t.Fatalf("waiting: %+v", el)
	}
	if el.WindowMinutes != 7200 {
		t.Fatalf("window minutes: %d", el.WindowMinutes)
	}

	_, err = h.attempts.Submit(ctx, user, types.AttemptProgress, progress)
	wantStatus(t, err, http.StatusConflict, CodeProgressNotEligible)

	h.clock.Advance(core.DefaultEligibilityWindow)
	out, err := h.attempts.Submit(ctx, user, types.AttemptProgress, progress)
	if err != nil {
		t.Fatalf("progress at window end: %v", err)
	}
	if out.Result.Total != 2 || out.Result.Correct != 1 {
		t.Fatalf("progress result: %+v", out.Result)
	}

	h.clock.Advance(time.Hour)
	el, err = h.eligibility.Check(ctx, user)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if el.Eligible || el.Reason != core.ReasonNoPracticeAfterProgress {
		t.Fatalf("after progress: %+v", el)
	}
	_, err = h.attempts.Submit(ctx, user, types.AttemptProgress, progress)
	wantStatus(t, err, http.StatusConflict, CodeProgressNotEligible)
}

func TestAcknowledgeDoesNotGate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()

	el, err := h.eligibility.Check(ctx, user)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if el.Reason != core.ReasonNoPractice || el.SuggestedAt != nil {
		t.Fatalf("fresh learner: %+v", el)
	}

	testutil.SeedAttempt(t, ctx, h.db, user, types.AttemptPractice, map[core.Part]float64{core.Part3: 0.5}, t0.Add(-6*24*time.Hour))

	before, err := h.eligibility.Check(ctx, user)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	after, err := h.eligibility.Acknowledge(ctx, user)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if !before.Eligible || !after.Eligible || before.Reason != after.Reason {
		t.Fatalf("acknowledgement changed the gate: before=%+v after=%+v", before, after)
	}
	if after.SuggestedAt == nil || !after.SuggestedAt.Equal(t0) {
		t.Fatalf("suggestedAt: %v", after.SuggestedAt)
	}
	got := eventTypes(h.bus)
	if len(got) != 1 || got[0] != realtime.EventProgressAcknowledged {
		t.Fatalf("events: %v", got)
	}
}

func TestRecommendationEMAAcrossAttempts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()

	testutil.SeedAttempt(t, ctx, h.db, user, types.AttemptPractice, map[core.Part]float64{core.Part1: 0.2}, t0.Add(-3*time.Hour))
	testutil.SeedAttempt(t, ctx, h.db, user, types.AttemptPractice, map[core.Part]float64{core.Part1: 0.6}, t0.Add(-2*time.Hour))
	testutil.SeedAttempt(t, ctx, h.db, user, types.AttemptPractice, map[core.Part]float64{core.Part1: 0.9}, t0.Add(-1*time.Hour))
	testutil.SeedAttempt(t, ctx, h.db, user, types.AttemptPlacement, map[core.Part]float64{core.Part1: 0.0}, t0)

	snap, err := h.recommendations.Recompute(ctx, nil, user)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if d := snap.PartAccuracy[core.Part1] - 0.494; d > 1e-9 || d < -1e-9 {
		t.Fatalf("ema: want=0.494 got=%v", snap.PartAccuracy[core.Part1])
	}
	if snap.Attempts != 3 {
		t.Fatalf("attempts: want=3 got=%d", snap.Attempts)
	}
	if snap.PartLevels[core.Part1] != 1 {
		t.Fatalf("level: want=1 got=%d", snap.PartLevels[core.Part1])
	}
}

func TestRecommendationWithoutPractice(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()

	snap, err := h.recommendations.Get(ctx, user)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.Attempts != 0 || snap.ComputedAt != nil || len(snap.PartAccuracy) != 0 {
		t.Fatalf("empty snapshot: %+v", snap)
	}
}

func TestRefreshStale(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	testutil.SeedAttempt(t, ctx, h.db, a, types.AttemptPractice, map[core.Part]float64{core.Part4: 0.4}, t0.Add(-time.Hour))
	testutil.SeedAttempt(t, ctx, h.db, b, types.AttemptPractice, map[core.Part]float64{core.Part7: 0.9}, t0.Add(-time.Hour))

	n, err := h.recommendations.RefreshStale(ctx)
	if err != nil {
		t.Fatalf("RefreshStale: %v", err)
	}
	if n != 2 {
		t.Fatalf("refreshed: want=2 got=%d", n)
	}

	n, err = h.recommendations.RefreshStale(ctx)
	if err != nil {
		t.Fatalf("RefreshStale (second): %v", err)
	}
	if n != 0 {
		t.Fatalf("second sweep: want=0 got=%d", n)
	}

	snap, err := h.recommendations.Get(ctx, b)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.PartLevels[core.Part7] != 3 {
		t.Fatalf("part.7 level: %+v", snap)
	}
}

func TestAttemptListAndGet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user, other := uuid.New(), uuid.New()

	first := testutil.SeedAttempt(t, ctx, h.db, user, types.AttemptPractice, map[core.Part]float64{core.Part5: 0.5}, t0.Add(-2*time.Hour))
	testutil.SeedAttempt(t, ctx, h.db, user, types.AttemptPlacement, map[core.Part]float64{core.Part5: 0.5}, t0.Add(-time.Hour))

	list, err := h.attempts.List(ctx, user, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Kind != types.AttemptPlacement {
		t.Fatalf("List: %+v", list)
	}
	if _, err := h.attempts.List(ctx, user, "bogus", 0); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("List(bogus kind): %v", err)
	}

	got, err := h.attempts.Get(ctx, user, first.ID)
	if err != nil || got.ID != first.ID {
		t.Fatalf("Get: %+v, %v", got, err)
	}
	_, err = h.attempts.Get(ctx, other, first.ID)
	wantStatus(t, err, http.StatusNotFound, "not_found")
}

func TestItemList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	testutil.SeedItems(t, ctx, h.db, "t", "part.5", 1, 3)
	testutil.SeedItems(t, ctx, h.db, "t", "part.7", 1, 2)

	items, err := h.items.List(ctx, types.ItemFilter{Part: "Part 5"}, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("List: want=3 got=%d", len(items))
	}
	if _, err := h.items.List(ctx, types.ItemFilter{Part: "9"}, 0); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("List(bad part): %v", err)
	}
	if _, err := h.items.List(ctx, types.ItemFilter{Level: 5}, 0); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("List(bad level): %v", err)
	}
}

func TestAuthService(t *testing.T) {
	clock := &fakeClock{now: t0}
	as := NewAuthService(testutil.Logger(t), "secret", clock.Now)
	user := uuid.New()

	tok, err := as.IssueAccessToken(user, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	ctx, err := as.SetContextFromToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != user {
		t.Fatalf("request data: %+v", rd)
	}

	other := NewAuthService(testutil.Logger(t), "other", clock.Now)
	if _, err := other.SetContextFromToken(context.Background(), tok); !errors.Is(err, apierr.ErrUnauthorized) {
		t.Fatalf("wrong secret: %v", err)
	}

	clock.Advance(2 * time.Hour)
	if _, err := as.SetContextFromToken(context.Background(), tok); !errors.Is(err, apierr.ErrUnauthorized) {
		t.Fatalf("expired: %v", err)
	}
	if _, err := as.SetContextFromToken(context.Background(), ""); !errors.Is(err, apierr.ErrUnauthorized) {
		t.Fatalf("empty: %v", err)
	}
}
