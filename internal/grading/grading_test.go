package grading

import (
	"testing"

	"test-grading-service/internal/domain"
)

func TestGradeSingleChoice(t *testing.T) {
	question := singleChoiceQuestion(10)

	answer := &domain.UserAnswer{QuestionID: "q1", SelectedOptionIDs: []string{"o2"}}
	grade := Grade(question, answer)
	if !grade.IsCorrect || grade.PointsAwarded != 10 {
		t.Fatalf("expected correct with 10 points, got %+v", grade)
	}

	wrong := &domain.UserAnswer{QuestionID: "q1", SelectedOptionIDs: []string{"o1"}}
	grade = Grade(question, wrong)
	if grade.IsCorrect || grade.PointsAwarded != 0 {
		t.Fatalf("expected incorrect with 0 points, got %+v", grade)
	}
}

func TestGradeMultipleChoiceExactSetMatch(t *testing.T) {
	question := multipleChoiceQuestion(15)

	// Order of selection is irrelevant.
	answer := &domain.UserAnswer{QuestionID: "q1", SelectedOptionIDs: []string{"o3", "o1"}}
	grade := Grade(question, answer)
	if !grade.IsCorrect || grade.PointsAwarded != 15 {
		t.Fatalf("expected correct regardless of order, got %+v", grade)
	}

	// Subset of the correct set earns nothing: no partial credit.
	subset := &domain.UserAnswer{QuestionID: "q1", SelectedOptionIDs: []string{"o1"}}
	grade = Grade(question, subset)
	if grade.IsCorrect || grade.PointsAwarded != 0 {
		t.Fatalf("expected subset to score 0, got %+v", grade)
	}

	// Superset is just as wrong.
	superset := &domain.UserAnswer{QuestionID: "q1", SelectedOptionIDs: []string{"o1", "o2", "o3"}}
	grade = Grade(question, superset)
	if grade.IsCorrect {
		t.Fatalf("expected superset to be incorrect, got %+v", grade)
	}
}

func TestGradeNoAnswer(t *testing.T) {
	grade := Grade(singleChoiceQuestion(5), nil)
	if grade.IsCorrect || grade.PointsAwarded != 0 {
		t.Fatalf("expected missing answer to score 0, got %+v", grade)
	}
}

// Text questions are graded correct with full points even without an
// answer. This pins the current scoring policy; changing it changes
// every stored percentage.
func TestGradeTextQuestionWithoutAnswer(t *testing.T) {
	question := domain.Question{ID: "q1", Text: "Explain your reasoning", Type: domain.QuestionText, Points: 7}

	grade := Grade(question, nil)
	if !grade.IsCorrect || grade.PointsAwarded != 7 {
		t.Fatalf("expected full credit for unanswered text question, got %+v", grade)
	}

	answered := &domain.UserAnswer{QuestionID: "q1", TextAnswer: "because"}
	grade = Grade(question, answered)
	if !grade.IsCorrect || grade.PointsAwarded != 7 {
		t.Fatalf("expected full credit for answered text question, got %+v", grade)
	}
}

func TestGradeDefaultsZeroPointsToOne(t *testing.T) {
	question := singleChoiceQuestion(0)
	grade := Grade(question, &domain.UserAnswer{QuestionID: "q1", SelectedOptionIDs: []string{"o2"}})
	if grade.PointsAwarded != 1 {
		t.Fatalf("expected zero-point question to award 1, got %+v", grade)
	}
}

// A question with no correct options violates the test invariant
// upstream, but the comparison must not special-case it: an empty
// selection equals an empty correct set.
func TestGradeDegenerateQuestionEmptySets(t *testing.T) {
	question := domain.Question{
		ID:      "q1",
		Type:    domain.QuestionMultiple,
		Options: []domain.Option{{ID: "o1", Text: "A"}, {ID: "o2", Text: "B"}},
		Points:  3,
	}
	grade := Grade(question, &domain.UserAnswer{QuestionID: "q1", SelectedOptionIDs: []string{}})
	if !grade.IsCorrect || grade.PointsAwarded != 3 {
		t.Fatalf("expected empty selection to match empty correct set, got %+v", grade)
	}
}

func singleChoiceQuestion(points int) domain.Question {
	return domain.Question{
		ID:   "q1",
		Text: "What is 2 + 2?",
		Type: domain.QuestionSingle,
		Options: []domain.Option{
			{ID: "o1", Text: "3"},
			{ID: "o2", Text: "4", IsCorrect: true},
			{ID: "o3", Text: "5"},
		},
		Points: points,
	}
}

func multipleChoiceQuestion(points int) domain.Question {
	return domain.Question{
		ID:   "q1",
		Text: "Select every even number",
		Type: domain.QuestionMultiple,
		Options: []domain.Option{
			{ID: "o1", Text: "2", IsCorrect: true},
			{ID: "o2", Text: "3"},
			{ID: "o3", Text: "4", IsCorrect: true},
		},
		Points: points,
	}
}
