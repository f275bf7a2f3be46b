package redis

import (
	"testing"
	"time"

	"test-grading-service/internal/app"
	"test-grading-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestAttemptStoreSetsAndClearsLivenessKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewAttemptStore(client, time.Minute)

	attempt := app.NewAttempt("test-1:u1", sampleTest(), domain.ModeExam)
	store.Put("test-1:u1", attempt)
	if !mr.Exists("attempt:test-1:u1") {
		t.Fatalf("expected liveness key to be set")
	}
	if got, ok := store.Get("test-1:u1"); !ok || got != attempt {
		t.Fatalf("expected stored attempt back")
	}

	store.Delete("test-1:u1")
	if mr.Exists("attempt:test-1:u1") {
		t.Fatalf("expected liveness key removed")
	}
	if _, ok := store.Get("test-1:u1"); ok {
		t.Fatalf("expected attempt removed from local map")
	}
}
