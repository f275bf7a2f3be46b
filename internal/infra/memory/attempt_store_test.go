package memory

import (
	"testing"

	"test-grading-service/internal/app"
	"test-grading-service/internal/domain"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	store := NewAttemptStore()

	attempt := app.NewAttempt("test-1:u1", sampleTest(), domain.ModeExam)
	store.Put("test-1:u1", attempt)

	got, ok := store.Get("test-1:u1")
	if !ok || got != attempt {
		t.Fatalf("expected stored attempt back")
	}

	store.Delete("test-1:u1")
	if _, ok := store.Get("test-1:u1"); ok {
		t.Fatalf("expected attempt removed")
	}
}
