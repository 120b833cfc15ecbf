package memory

import (
	"context"
	"reflect"
	"testing"
	"time"

	"quiz-builder-service/internal/domain"
)

func sampleQuiz(name string) domain.Quiz {
	return domain.Quiz{
		Name:  name,
		Timer: 2,
		Questions: []domain.Question{
			{Question: "prompt", Answers: []string{"a", "b"}, CorrectAnswers: []int{1}, Points: 5},
		},
	}
}

func TestUpsertMintsIDAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	stored, err := store.Upsert(ctx, sampleQuiz("Geography"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if stored.ID == 0 {
		t.Fatalf("expected minted id")
	}

	got, err := store.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := sampleQuiz("Geography")
	want.ID = stored.ID
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("stored quiz differs:\n got %+v\nwant %+v", got, want)
	}
}

func TestUpsertIsIdempotentOnID(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	stored, err := store.Upsert(ctx, sampleQuiz("Geography"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	stored.Name = "Geography v2"
	if _, err := store.Upsert(ctx, stored); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if _, err := store.Upsert(ctx, stored); err != nil {
		t.Fatalf("third upsert: %v", err)
	}

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one record for id %d, got %d", stored.ID, len(all))
	}
	if all[0].Name != "Geography v2" {
		t.Fatalf("expected updated name, got %q", all[0].Name)
	}
}

func TestUpsertUnknownIDFails(t *testing.T) {
	store := NewQuizStore()

	quiz := sampleQuiz("Ghost")
	quiz.ID = 12345
	if _, err := store.Upsert(context.Background(), quiz); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestMintedIDsAreUniqueWithinOneMillisecond(t *testing.T) {
	ctx := context.Background()
	fixed := time.UnixMilli(1700000000000)
	store := NewQuizStoreWithClock(func() time.Time { return fixed })

	first, err := store.Upsert(ctx, sampleQuiz("one"))
	if err != nil {
		t.Fatalf("upsert one: %v", err)
	}
	second, err := store.Upsert(ctx, sampleQuiz("two"))
	if err != nil {
		t.Fatalf("upsert two: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must be unique even with a frozen clock, both %d", first.ID)
	}
}

func TestDeleteByIDRemovesOneAndToleratesMisses(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	a, _ := store.Upsert(ctx, sampleQuiz("a"))
	b, _ := store.Upsert(ctx, sampleQuiz("b"))

	if err := store.DeleteByID(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ := store.ListAll(ctx)
	if len(all) != 1 || all[0].ID != b.ID {
		t.Fatalf("expected only %d left, got %+v", b.ID, all)
	}

	if err := store.DeleteByID(ctx, 999); err != nil {
		t.Fatalf("deleting a missing id must be a no-op, got %v", err)
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := NewQuizStore()
	if _, err := store.GetByID(context.Background(), 1); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListAllReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	stored, _ := store.Upsert(ctx, sampleQuiz("Geography"))

	all, _ := store.ListAll(ctx)
	all[0].Questions[0].Answers[0] = "tampered"

	got, _ := store.GetByID(ctx, stored.ID)
	if got.Questions[0].Answers[0] != "a" {
		t.Fatalf("callers must not be able to mutate stored state")
	}
}
