package memory

import (
	"context"
	"strconv"
	"sync"

	"test-grading-service/internal/domain"
)

// ResultStore keeps submitted results in memory, newest first per list.
// Results are append-only; a stored result is never mutated.
type ResultStore struct {
	mu      sync.RWMutex
	results []domain.Result
	nextID  int
}

func NewResultStore() *ResultStore {
	return &ResultStore{nextID: 1}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.Result) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.ID = "result-" + strconv.Itoa(s.nextID)
	s.nextID++
	s.results = append(s.results, result)
	return result, nil
}

// ListByUser returns the user's results, most recent first.
func (s *ResultStore) ListByUser(_ context.Context, userID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(r domain.Result) bool { return r.UserID == userID }), nil
}

// ListByTest returns all results for a test, most recent first.
func (s *ResultStore) ListByTest(_ context.Context, testID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(r domain.Result) bool { return r.TestID == testID }), nil
}

func (s *ResultStore) filter(keep func(domain.Result) bool) []domain.Result {
	matched := make([]domain.Result, 0)
	for i := len(s.results) - 1; i >= 0; i-- {
		if keep(s.results[i]) {
			matched = append(matched, s.results[i])
		}
	}
	return matched
}
