package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"test-grading-service/internal/domain"
	"test-grading-service/internal/notify"
)

// AttemptStore abstracts how live attempts are tracked (in-memory, Redis, etc).
type AttemptStore interface {
	Put(key string, attempt *Attempt)
	Get(key string) (*Attempt, bool)
	Delete(key string)
}

// TestRepository loads test definitions (from cache/backing store).
type TestRepository interface {
	GetTest(ctx context.Context, testID string) (domain.Test, error)
}

// ResultStore persists compiled results and returns the stored copy
// with its generated id.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.Result) (domain.Result, error)
}

// AttemptService contains the attempt-taking use cases: it seeds
// attempts from test definitions, routes navigation events into the
// live attempt and compiles plus submits the final result.
type AttemptService struct {
	attempts AttemptStore
	tests    TestRepository
	results  ResultStore
	notifier notify.Notifier
}

func NewAttemptService(attempts AttemptStore, tests TestRepository, results ResultStore, notifier notify.Notifier) *AttemptService {
	return &AttemptService{attempts: attempts, tests: tests, results: results, notifier: notifier}
}

// Start loads the test, creates a fresh attempt for the user and
// transitions it into progress. A previous unfinished attempt for the
// same test and user is discarded: nothing of it was persisted.
func (s *AttemptService) Start(ctx context.Context, testID, userID string, mode domain.Mode) (*Attempt, error) {
	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if mode == domain.ModeTraining && !test.AllowTrainingMode {
		return nil, domain.ErrTrainingNotAllowed
	}

	attempt := NewAttempt(attemptKey(testID, userID), test, mode)
	if err := attempt.Start(); err != nil {
		return nil, err
	}
	s.attempts.Put(attempt.Key(), attempt)
	return attempt, nil
}

// Attempt returns the live attempt for a test and user.
func (s *AttemptService) Attempt(testID, userID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptKey(testID, userID))
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// SaveAnswer upserts the user's answer for a question on their live attempt.
func (s *AttemptService) SaveAnswer(testID, userID, questionID string, selectedOptionIDs []string, textAnswer string) error {
	attempt, err := s.Attempt(testID, userID)
	if err != nil {
		return err
	}
	return attempt.SaveAnswer(questionID, selectedOptionIDs, textAnswer)
}

// ToggleMark flips the review flag on a question.
func (s *AttemptService) ToggleMark(testID, userID, questionID string) (bool, error) {
	attempt, err := s.Attempt(testID, userID)
	if err != nil {
		return false, err
	}
	return attempt.ToggleMark(questionID)
}

// CheckAnswer returns immediate feedback for a question, or nil when
// the attempt is in exam mode.
func (s *AttemptService) CheckAnswer(testID, userID, questionID string) (*domain.CheckResult, error) {
	attempt, err := s.Attempt(testID, userID)
	if err != nil {
		return nil, err
	}
	return attempt.CheckAnswer(questionID), nil
}

// Hint returns the question's hint, or "" when the attempt is in exam mode.
func (s *AttemptService) Hint(testID, userID, questionID string) (string, error) {
	attempt, err := s.Attempt(testID, userID)
	if err != nil {
		return "", err
	}
	return attempt.Hint(questionID), nil
}

// Discard drops an abandoned attempt. Nothing is persisted for a
// discarded attempt.
func (s *AttemptService) Discard(testID, userID string) {
	s.attempts.Delete(attemptKey(testID, userID))
}

// Finish completes the attempt, compiles the result and submits it to
// the result store. When persistence fails the locally-compiled result
// is still returned alongside domain.ErrResultNotPersisted: the user's
// work is never discarded, retrying the submission is the caller's
// call. The attempt is removed from the store either way.
func (s *AttemptService) Finish(ctx context.Context, testID, userID, userName string) (domain.Result, error) {
	attempt, err := s.Attempt(testID, userID)
	if err != nil {
		return domain.Result{}, err
	}

	snapshot, err := attempt.Finish()
	if err != nil {
		return domain.Result{}, err
	}
	s.attempts.Delete(attempt.Key())

	test := attempt.Test()
	result := CompileResult(test, snapshot, userID, userName, time.Now())

	saved, err := s.results.SaveResult(ctx, result)
	if err != nil {
		return result, fmt.Errorf("%w: %v", domain.ErrResultNotPersisted, err)
	}

	s.notifyAuthor(ctx, test, saved)
	return saved, nil
}

// notifyAuthor tells the test's author about a new submission,
// best-effort. Self-submissions are skipped.
func (s *AttemptService) notifyAuthor(ctx context.Context, test domain.Test, result domain.Result) {
	if s.notifier == nil || test.AuthorID == "" || test.AuthorID == result.UserID {
		return
	}
	event := notify.ResultEvent{
		RecipientID: test.AuthorID,
		SenderID:    result.UserID,
		TestID:      result.TestID,
		TestTitle:   result.TestTitle,
		UserName:    result.UserName,
		Percentage:  result.Percentage,
		Passed:      result.Passed,
	}
	if err := s.notifier.ResultSubmitted(ctx, event); err != nil {
		log.Printf("notify author of result %s: %v", result.ID, err)
	}
}

func attemptKey(testID, userID string) string {
	return testID + ":" + userID
}
