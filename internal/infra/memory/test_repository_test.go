package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"test-grading-service/internal/domain"
)

func TestTestRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		TestLoader: NewStaticTestLoader(map[string]domain.Test{
			"test-1": sampleTest(),
		}),
	}
	repo := NewTestRepository(loader, time.Minute)

	if _, err := repo.GetTest(context.Background(), "test-1"); err != nil {
		t.Fatalf("get test: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetTest(context.Background(), "test-1"); err != nil {
		t.Fatalf("get test 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestTestRepositoryInvalidateForcesReload(t *testing.T) {
	loader := &countingLoader{
		TestLoader: NewStaticTestLoader(map[string]domain.Test{
			"test-1": sampleTest(),
		}),
	}
	repo := NewTestRepository(loader, time.Minute)

	if _, err := repo.GetTest(context.Background(), "test-1"); err != nil {
		t.Fatalf("get test: %v", err)
	}
	repo.Invalidate("test-1")
	if _, err := repo.GetTest(context.Background(), "test-1"); err != nil {
		t.Fatalf("get test after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestStaticTestLoaderUnknownID(t *testing.T) {
	loader := NewStaticTestLoader(map[string]domain.Test{})
	if _, err := loader.LoadTest(context.Background(), "missing"); !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("expected test-not-found, got %v", err)
	}
}

type countingLoader struct {
	TestLoader
	calls int
}

func (l *countingLoader) LoadTest(ctx context.Context, testID string) (domain.Test, error) {
	l.calls++
	return l.TestLoader.LoadTest(ctx, testID)
}

func sampleTest() domain.Test {
	return domain.Test{
		ID:    "test-1",
		Title: "Arithmetic basics",
		Questions: []domain.Question{
			{
				ID:   "q1",
				Text: "What is 2 + 2?",
				Type: domain.QuestionSingle,
				Options: []domain.Option{
					{ID: "o1", Text: "3"},
					{ID: "o2", Text: "4", IsCorrect: true},
				},
				Points: 10,
			},
		},
	}
}
