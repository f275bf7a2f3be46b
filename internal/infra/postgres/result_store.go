package postgres

import (
	"context"
	"fmt"
	"strconv"

	"test-grading-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists compiled results. Answers and question stats go
// into JSONB columns through the versioned envelope, so reading them
// back is a validated decode rather than a parse of an opaque blob.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.Result) (domain.Result, error) {
	answers, err := domain.EncodeAnswers(result.Answers)
	if err != nil {
		return domain.Result{}, fmt.Errorf("encode answers: %w", err)
	}
	stats, err := domain.EncodeStats(result.QuestionStats)
	if err != nil {
		return domain.Result{}, fmt.Errorf("encode stats: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO results
			(test_id, test_title, user_id, user_name, score, max_score,
			 percentage, mode, total_time, passed, completed_at, answers, stats)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id`,
		result.TestID, result.TestTitle, result.UserID, result.UserName,
		result.Score, result.MaxScore, result.Percentage, string(result.Mode),
		result.TotalTimeSeconds, result.Passed, result.CompletedAt, answers, stats,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		return domain.Result{}, fmt.Errorf("insert result: %w", err)
	}
	result.ID = strconv.FormatInt(id, 10)
	return result, nil
}

// ListByTest returns all results for a test, most recent first.
func (s *ResultStore) ListByTest(ctx context.Context, testID string) ([]domain.Result, error) {
	return s.list(ctx, `test_id=$1`, testID)
}

// ListByUser returns the user's results, most recent first.
func (s *ResultStore) ListByUser(ctx context.Context, userID string) ([]domain.Result, error) {
	return s.list(ctx, `user_id=$1`, userID)
}

func (s *ResultStore) list(ctx context.Context, where string, arg interface{}) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, test_id, test_title, user_id, user_name, score, max_score,
		       percentage, mode, total_time, passed, completed_at, answers, stats
		FROM results WHERE `+where+` ORDER BY completed_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var r domain.Result
		var id int64
		var mode string
		var answers, stats []byte
		if err := rows.Scan(&id, &r.TestID, &r.TestTitle, &r.UserID, &r.UserName,
			&r.Score, &r.MaxScore, &r.Percentage, &mode, &r.TotalTimeSeconds,
			&r.Passed, &r.CompletedAt, &answers, &stats); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.ID = strconv.FormatInt(id, 10)
		r.Mode = domain.Mode(mode)
		if r.Answers, err = domain.DecodeAnswers(answers); err != nil {
			return nil, err
		}
		if r.QuestionStats, err = domain.DecodeStats(stats); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
