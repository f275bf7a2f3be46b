package domain

import "time"

// QuestionType discriminates how a question is answered and graded.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionText     QuestionType = "text"
)

// Difficulty is an optional authoring label; it has no grading effect.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Mode selects the attempt behavior: training allows hints and immediate
// feedback, exam forbids both and may be time-limited.
type Mode string

const (
	ModeTraining Mode = "training"
	ModeExam     Mode = "exam"
)

// Option represents a possible answer for a question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models one gradable unit of a test.
type Question struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Type        QuestionType `json:"type"`
	Options     []Option     `json:"options"`
	Points      int          `json:"points"` // defaults to 1 if zero
	Difficulty  Difficulty   `json:"difficulty,omitempty"`
	Category    string       `json:"category,omitempty"`
	Hint        string       `json:"hint,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
}

// CorrectOptionIDs returns the ids of all options flagged correct, in
// option order.
func (q Question) CorrectOptionIDs() []string {
	ids := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// Test is an ordered collection of questions plus attempt policy.
type Test struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Questions         []Question `json:"questions"`
	TimeLimitMinutes  int        `json:"timeLimit,omitempty"` // 0 = untimed
	AllowTrainingMode bool       `json:"allowTrainingMode,omitempty"`
	PassingScore      int        `json:"passingScore,omitempty"` // percentage, 0 = unset
	AuthorID          string     `json:"authorId,omitempty"`
}

// Question looks up a question by id; ok is false when the id is not
// part of this test.
func (t Test) Question(questionID string) (Question, bool) {
	for i := range t.Questions {
		if t.Questions[i].ID == questionID {
			return t.Questions[i], true
		}
	}
	return Question{}, false
}

// UserAnswer is the latest answer a user gave to one question. At most
// one exists per question id within an attempt.
type UserAnswer struct {
	QuestionID        string   `json:"questionId"`
	SelectedOptionIDs []string `json:"selectedOptionIds"`
	TextAnswer        string   `json:"textAnswer,omitempty"`
	TimeSpentMillis   int64    `json:"timeSpent"`
}

// Grade is the outcome of grading a single question.
type Grade struct {
	IsCorrect     bool `json:"isCorrect"`
	PointsAwarded int  `json:"pointsAwarded"`
}

// CheckResult is the immediate feedback returned in training mode.
type CheckResult struct {
	QuestionID       string   `json:"questionId"`
	IsCorrect        bool     `json:"isCorrect"`
	CorrectOptionIDs []string `json:"correctOptionIds"`
	Explanation      string   `json:"explanation,omitempty"`
}

// QuestionStat is the per-question grading snapshot embedded in a
// Result, produced in test question order.
type QuestionStat struct {
	QuestionID       string   `json:"questionId"`
	QuestionText     string   `json:"questionText"`
	IsCorrect        bool     `json:"isCorrect"`
	TimeSpentSeconds int      `json:"timeSpent"`
	UserAnswer       []string `json:"userAnswer"`
	CorrectAnswer    []string `json:"correctAnswer"`
	Category         string   `json:"category,omitempty"`
}

// Result is the finalized outcome of one completed attempt. It is
// created exactly once per submission and never mutated; a resubmission
// creates a new Result.
type Result struct {
	ID               string         `json:"id"`
	TestID           string         `json:"testId"`
	TestTitle        string         `json:"testTitle"`
	UserID           string         `json:"userId"`
	UserName         string         `json:"userName"`
	Answers          []UserAnswer   `json:"answers"`
	Score            int            `json:"score"`
	MaxScore         int            `json:"maxScore"`
	Percentage       int            `json:"percentage"` // 0-100, rounded
	CompletedAt      time.Time      `json:"completedAt"`
	Mode             Mode           `json:"mode"`
	TotalTimeSeconds int            `json:"totalTime"`
	Passed           bool           `json:"passed"`
	QuestionStats    []QuestionStat `json:"questionStats"`
}

// RedactedOption is an option with correctness withheld.
type RedactedOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// RedactedQuestion is the client-safe view of a question: correctness,
// hint and explanation are withheld until after grading.
type RedactedQuestion struct {
	ID         string           `json:"id"`
	Text       string           `json:"text"`
	Type       QuestionType     `json:"type"`
	Options    []RedactedOption `json:"options"`
	Points     int              `json:"points"`
	Difficulty Difficulty       `json:"difficulty,omitempty"`
	Category   string           `json:"category,omitempty"`
}

// RedactedTest is the client-safe view of a test sent to an attempt in
// progress.
type RedactedTest struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Questions         []RedactedQuestion `json:"questions"`
	TimeLimitMinutes  int                `json:"timeLimit,omitempty"`
	AllowTrainingMode bool               `json:"allowTrainingMode,omitempty"`
	PassingScore      int                `json:"passingScore,omitempty"`
}

// Redact strips answer keys, hints and explanations from a test so the
// payload can be sent to a client before submission.
func (t Test) Redact() RedactedTest {
	questions := make([]RedactedQuestion, 0, len(t.Questions))
	for _, q := range t.Questions {
		options := make([]RedactedOption, 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, RedactedOption{ID: opt.ID, Text: opt.Text})
		}
		questions = append(questions, RedactedQuestion{
			ID:         q.ID,
			Text:       q.Text,
			Type:       q.Type,
			Options:    options,
			Points:     q.Points,
			Difficulty: q.Difficulty,
			Category:   q.Category,
		})
	}
	return RedactedTest{
		ID:                t.ID,
		Title:             t.Title,
		Questions:         questions,
		TimeLimitMinutes:  t.TimeLimitMinutes,
		AllowTrainingMode: t.AllowTrainingMode,
		PassingScore:      t.PassingScore,
	}
}
