// Package grading scores a single submitted answer against its
// question's answer key. It is pure: no storage, no transport, no clock.
package grading

import "test-grading-service/internal/domain"

// Grade compares the answer against the question's correct-option set
// and returns correctness plus the points awarded. A nil answer means
// the user never answered the question.
//
// Text questions are always graded correct with full points, even when
// no answer was submitted: free-text checking is manual and happens
// downstream. See TestGradeTextQuestionWithoutAnswer before changing this.
func Grade(question domain.Question, answer *domain.UserAnswer) domain.Grade {
	points := question.Points
	if points == 0 {
		points = 1
	}

	if question.Type == domain.QuestionText {
		return domain.Grade{IsCorrect: true, PointsAwarded: points}
	}

	if answer == nil {
		return domain.Grade{}
	}

	if setsEqual(answer.SelectedOptionIDs, question.CorrectOptionIDs()) {
		return domain.Grade{IsCorrect: true, PointsAwarded: points}
	}
	return domain.Grade{}
}

// setsEqual reports whether two id slices contain the same members,
// ignoring order and duplicates.
func setsEqual(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for id := range setA {
		if _, ok := setB[id]; !ok {
			return false
		}
	}
	return true
}
