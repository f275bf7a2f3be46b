package app

import (
	"math"
	"time"

	"test-grading-service/internal/domain"
	"test-grading-service/internal/grading"
)

// CompileResult grades every question of the test against the finished
// attempt and aggregates the final result. It iterates questions in
// test order, so the stats list matches the test, not the order answers
// were submitted in. Answers referencing question ids not present in
// the test are ignored; questions the user never answered grade as
// unanswered. Compilation is deterministic: the same test and snapshot
// always produce the same score, percentage and stats.
//
// Rounding convention throughout is round half away from zero
// (math.Round); tests pin exact values.
func CompileResult(test domain.Test, snapshot AttemptSnapshot, userID, userName string, now time.Time) domain.Result {
	byQuestion := make(map[string]domain.UserAnswer, len(snapshot.Answers))
	for _, answer := range snapshot.Answers {
		byQuestion[answer.QuestionID] = answer
	}

	score := 0
	maxScore := 0
	stats := make([]domain.QuestionStat, 0, len(test.Questions))

	for _, question := range test.Questions {
		points := question.Points
		if points == 0 {
			points = 1
		}
		maxScore += points

		var answer *domain.UserAnswer
		var selected []string
		if saved, ok := byQuestion[question.ID]; ok {
			answer = &saved
			selected = saved.SelectedOptionIDs
		}
		if selected == nil {
			selected = []string{}
		}

		grade := grading.Grade(question, answer)
		score += grade.PointsAwarded

		stats = append(stats, domain.QuestionStat{
			QuestionID:       question.ID,
			QuestionText:     question.Text,
			IsCorrect:        grade.IsCorrect,
			TimeSpentSeconds: roundSeconds(snapshot.TimeSpent[question.ID]),
			UserAnswer:       selected,
			CorrectAnswer:    question.CorrectOptionIDs(),
			Category:         question.Category,
		})
	}

	percentage := 0
	if maxScore > 0 {
		percentage = int(math.Round(float64(score) / float64(maxScore) * 100))
	}

	passed := true
	if test.PassingScore > 0 {
		passed = percentage >= test.PassingScore
	}

	return domain.Result{
		TestID:           test.ID,
		TestTitle:        test.Title,
		UserID:           userID,
		UserName:         userName,
		Answers:          snapshot.Answers,
		Score:            score,
		MaxScore:         maxScore,
		Percentage:       percentage,
		CompletedAt:      now,
		Mode:             snapshot.Mode,
		TotalTimeSeconds: roundSeconds(now.Sub(snapshot.StartedAt)),
		Passed:           passed,
		QuestionStats:    stats,
	}
}

func roundSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds()))
}
