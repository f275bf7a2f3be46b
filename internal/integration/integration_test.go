package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"test-grading-service/internal/app"
	"test-grading-service/internal/domain"
	pgstore "test-grading-service/internal/infra/postgres"
	pgmigrations "test-grading-service/internal/infra/postgres/migrations"
	infraredis "test-grading-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedTest(t, ctx, pgURL, sampleTest())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewTestLoader(pool)
	results := pgstore.NewResultStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	tests := infraredis.NewTestRepository(redisClient, loader, 5*time.Minute)
	attempts := infraredis.NewAttemptStore(redisClient, 5*time.Minute)
	notifier := infraredis.NewNotifier(redisClient)
	service := app.NewAttemptService(attempts, tests, results, notifier)

	sub := redisClient.Subscribe(ctx, infraredis.ResultChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := service.Start(ctx, "test-1", "u1", domain.ModeExam); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := service.SaveAnswer("test-1", "u1", "q1", []string{"o2"}, ""); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if err := service.SaveAnswer("test-1", "u1", "q2", []string{"o1", "o3"}, ""); err != nil {
		t.Fatalf("answer q2: %v", err)
	}

	result, err := service.Finish(ctx, "test-1", "u1", "Alice")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.ID == "" {
		t.Fatalf("expected persisted result id")
	}
	if result.Score != 20 || result.MaxScore != 20 || result.Percentage != 100 {
		t.Fatalf("expected perfect score, got %+v", result)
	}
	if !result.Passed {
		t.Fatalf("expected pass at 100%% with threshold 60")
	}

	// The stored row round-trips through the versioned envelopes.
	stored, err := results.ListByTest(ctx, "test-1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != result.ID {
		t.Fatalf("expected the result back from postgres, got %+v", stored)
	}
	if len(stored[0].Answers) != 2 || len(stored[0].QuestionStats) != 2 {
		t.Fatalf("expected answers and stats round-trip, got %+v", stored[0])
	}

	// The author got notified over redis pub/sub.
	select {
	case msg := <-sub.Channel():
		if !strings.Contains(msg.Payload, `"recipientId":"teacher-1"`) {
			t.Fatalf("unexpected notification payload %s", msg.Payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no result notification published")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "grading", "POSTGRES_PASSWORD": "gradingpass", "POSTGRES_DB": "gradingdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://grading:gradingpass@%s:%s/gradingdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedTest(t *testing.T, ctx context.Context, dsn string, test domain.Test) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(test)
	if err != nil {
		t.Fatalf("marshal test: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO tests (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, test.ID, string(data)); err != nil {
		t.Fatalf("insert test: %v", err)
	}
}

func sampleTest() domain.Test {
	return domain.Test{
		ID:           "test-1",
		Title:        "Arithmetic basics",
		PassingScore: 60,
		AuthorID:     "teacher-1",
		Questions: []domain.Question{
			{
				ID:   "q1",
				Text: "What is 2 + 2?",
				Type: domain.QuestionSingle,
				Options: []domain.Option{
					{ID: "o1", Text: "3"},
					{ID: "o2", Text: "4", IsCorrect: true},
					{ID: "o3", Text: "5"},
				},
				Points: 10,
			},
			{
				ID:   "q2",
				Text: "Select every even number.",
				Type: domain.QuestionMultiple,
				Options: []domain.Option{
					{ID: "o1", Text: "2", IsCorrect: true},
					{ID: "o2", Text: "3"},
					{ID: "o3", Text: "4", IsCorrect: true},
				},
				Points: 10,
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
