package memory

import (
	"testing"

	"quiz-builder-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := app.NewSession("tok-1", sampleQuiz("Geography"))
	store.Put("tok-1", session)

	got, ok := store.Get("tok-1")
	if !ok || got != session {
		t.Fatalf("expected stored session back, got %v ok=%v", got, ok)
	}

	store.Delete("tok-1")
	if _, ok := store.Get("tok-1"); ok {
		t.Fatalf("expected session removed")
	}

	// Deleting an unknown token is harmless.
	store.Delete("tok-unknown")
}
