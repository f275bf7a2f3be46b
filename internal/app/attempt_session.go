package app

import (
	"sync"
	"time"

	"test-grading-service/internal/domain"
	"test-grading-service/internal/grading"
)

type attemptState int

const (
	attemptCreated attemptState = iota
	attemptInProgress
	attemptCompleted
)

// Attempt is one user's in-progress pass through a test. It is an
// in-memory state container owned by a single client interaction; it is
// never persisted, only its compiled Result survives. The mutex exists
// so a server-side timer expiry can finish the attempt while the client
// connection is still driving it.
type Attempt struct {
	key  string
	test domain.Test
	mode domain.Mode
	now  func() time.Time

	mu            sync.Mutex
	state         attemptState
	startedAt     time.Time
	answers       map[string]domain.UserAnswer
	answerOrder   []string
	marked        map[string]struct{}
	timeSpent     map[string]time.Duration
	questionStart time.Time
}

// AttemptSnapshot is the frozen state handed to the result compiler
// when an attempt finishes.
type AttemptSnapshot struct {
	TestID    string
	Mode      domain.Mode
	StartedAt time.Time
	Answers   []domain.UserAnswer
	TimeSpent map[string]time.Duration
}

// NewAttempt is exported for infrastructure layers that need to seed attempts.
func NewAttempt(key string, test domain.Test, mode domain.Mode) *Attempt {
	return newAttemptWithClock(key, test, mode, time.Now)
}

// NewAttemptWithClock is test-only for deterministic timestamps.
func NewAttemptWithClock(key string, test domain.Test, mode domain.Mode, now func() time.Time) *Attempt {
	return newAttemptWithClock(key, test, mode, now)
}

func newAttemptWithClock(key string, test domain.Test, mode domain.Mode, now func() time.Time) *Attempt {
	return &Attempt{
		key:  key,
		test: test,
		mode: mode,
		now:  now,
	}
}

// Key returns the attempt's store key.
func (a *Attempt) Key() string { return a.key }

// Mode returns the attempt mode.
func (a *Attempt) Mode() domain.Mode { return a.mode }

// Test returns the test this attempt runs against.
func (a *Attempt) Test() domain.Test { return a.test }

// Start transitions the attempt into progress, resetting answers,
// marks and timers. Starting twice is an error.
func (a *Attempt) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case attemptInProgress:
		return domain.ErrAttemptAlreadyStarted
	case attemptCompleted:
		return domain.ErrAttemptCompleted
	}
	now := a.now()
	a.state = attemptInProgress
	a.startedAt = now
	a.questionStart = now
	a.answers = make(map[string]domain.UserAnswer)
	a.answerOrder = nil
	a.marked = make(map[string]struct{})
	a.timeSpent = make(map[string]time.Duration)
	return nil
}

// StartedAt returns when the attempt entered progress.
func (a *Attempt) StartedAt() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startedAt
}

// RecordTime attributes the wall-clock time since the last clock reset
// to the given question and resets the reference point. Call it on
// every navigation away from a question, and before SaveAnswer commits.
func (a *Attempt) RecordTime(questionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recordTimeLocked(questionID)
}

func (a *Attempt) recordTimeLocked(questionID string) error {
	if err := a.inProgressLocked(); err != nil {
		return err
	}
	now := a.now()
	a.timeSpent[questionID] += now.Sub(a.questionStart)
	a.questionStart = now
	return nil
}

// SaveAnswer records the time spent on the question and upserts the
// user's answer for it. At most one answer exists per question id;
// saving again replaces the prior answer.
func (a *Attempt) SaveAnswer(questionID string, selectedOptionIDs []string, textAnswer string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.recordTimeLocked(questionID); err != nil {
		return err
	}
	if _, ok := a.answers[questionID]; !ok {
		a.answerOrder = append(a.answerOrder, questionID)
	}
	a.answers[questionID] = domain.UserAnswer{
		QuestionID:        questionID,
		SelectedOptionIDs: append([]string(nil), selectedOptionIDs...),
		TextAnswer:        textAnswer,
		TimeSpentMillis:   a.timeSpent[questionID].Milliseconds(),
	}
	return nil
}

// ToggleMark flags or unflags a question for review. Marks are cosmetic
// and have no grading effect. It reports whether the question is marked
// after the toggle.
func (a *Attempt) ToggleMark(questionID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.inProgressLocked(); err != nil {
		return false, err
	}
	if _, ok := a.marked[questionID]; ok {
		delete(a.marked, questionID)
		return false, nil
	}
	a.marked[questionID] = struct{}{}
	return true, nil
}

// IsMarked reports whether a question is currently flagged for review.
func (a *Attempt) IsMarked(questionID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.marked[questionID]
	return ok
}

// CheckAnswer grades the current answer for a question immediately and
// returns the correct option set. Training mode only: in exam mode it
// returns nil so no feedback leaks before submission.
func (a *Attempt) CheckAnswer(questionID string) *domain.CheckResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != domain.ModeTraining || a.state != attemptInProgress {
		return nil
	}
	question, ok := a.test.Question(questionID)
	if !ok {
		return nil
	}
	var answer *domain.UserAnswer
	if saved, ok := a.answers[questionID]; ok {
		answer = &saved
	}
	grade := grading.Grade(question, answer)
	return &domain.CheckResult{
		QuestionID:       questionID,
		IsCorrect:        grade.IsCorrect,
		CorrectOptionIDs: question.CorrectOptionIDs(),
		Explanation:      question.Explanation,
	}
}

// Hint returns the question's hint text. Training mode only: in exam
// mode it returns "" unconditionally.
func (a *Attempt) Hint(questionID string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != domain.ModeTraining {
		return ""
	}
	question, ok := a.test.Question(questionID)
	if !ok {
		return ""
	}
	return question.Hint
}

// Finish transitions the attempt to completed, freezing all further
// mutation, and returns the frozen state for result compilation.
// Finishing twice is an error.
func (a *Attempt) Finish() (AttemptSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.inProgressLocked(); err != nil {
		return AttemptSnapshot{}, err
	}
	a.state = attemptCompleted

	answers := make([]domain.UserAnswer, 0, len(a.answerOrder))
	for _, questionID := range a.answerOrder {
		answers = append(answers, a.answers[questionID])
	}
	timeSpent := make(map[string]time.Duration, len(a.timeSpent))
	for questionID, d := range a.timeSpent {
		timeSpent[questionID] = d
	}
	return AttemptSnapshot{
		TestID:    a.test.ID,
		Mode:      a.mode,
		StartedAt: a.startedAt,
		Answers:   answers,
		TimeSpent: timeSpent,
	}, nil
}

func (a *Attempt) inProgressLocked() error {
	switch a.state {
	case attemptCreated:
		return domain.ErrAttemptNotStarted
	case attemptCompleted:
		return domain.ErrAttemptCompleted
	}
	return nil
}
