package memory

import (
	"context"
	"testing"
	"time"

	"test-grading-service/internal/domain"
)

func TestResultStoreAssignsIDsAndLists(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	first, err := store.SaveResult(ctx, domain.Result{TestID: "test-1", UserID: "u1", Score: 10, CompletedAt: time.Now()})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected generated id")
	}

	second, err := store.SaveResult(ctx, domain.Result{TestID: "test-1", UserID: "u2", Score: 5, CompletedAt: time.Now()})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected unique ids, both %q", first.ID)
	}

	byTest, err := store.ListByTest(ctx, "test-1")
	if err != nil || len(byTest) != 2 {
		t.Fatalf("expected 2 results for test, got %d err=%v", len(byTest), err)
	}
	if byTest[0].ID != second.ID {
		t.Fatalf("expected most recent first, got %q", byTest[0].ID)
	}

	byUser, err := store.ListByUser(ctx, "u1")
	if err != nil || len(byUser) != 1 || byUser[0].ID != first.ID {
		t.Fatalf("expected u1's single result, got %+v err=%v", byUser, err)
	}
}
