package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"test-grading-service/internal/app"
	"test-grading-service/internal/config"
	"test-grading-service/internal/domain"
	"test-grading-service/internal/infra/memory"
	pgstore "test-grading-service/internal/infra/postgres"
	redisinfra "test-grading-service/internal/infra/redis"
	"test-grading-service/internal/notify"
	transport "test-grading-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the grading server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	attemptTTL := config.TTLDuration(cfg.Attempts.TTL, 2*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.TestLoader = memory.NewStaticTestLoader(sampleTests())
	if pool != nil {
		loader = pgstore.NewTestLoader(pool)
	}

	testTTL := config.TTLDuration(cfg.Tests.TTL, 10*time.Minute)
	var tests app.TestRepository
	if redisClient != nil {
		tests = redisinfra.NewTestRepository(redisClient, loader, testTTL)
	} else {
		tests = memory.NewTestRepository(loader, testTTL)
	}

	var attempts app.AttemptStore
	if redisClient != nil {
		attempts = redisinfra.NewAttemptStore(redisClient, attemptTTL)
	} else {
		attempts = memory.NewAttemptStore()
	}

	var results app.ResultStore
	if pool != nil {
		results = pgstore.NewResultStore(pool)
	} else {
		results = memory.NewResultStore()
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if redisClient != nil {
		notifier = redisinfra.NewNotifier(redisClient)
	}

	service := app.NewAttemptService(attempts, tests, results, notifier)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting grading service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleTests provides a minimal test fixture for running without Postgres.
func sampleTests() map[string]domain.Test {
	return map[string]domain.Test{
		"test-1": {
			ID:                "test-1",
			Title:             "Arithmetic basics",
			AllowTrainingMode: true,
			PassingScore:      60,
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
					Hint:   "Count on your fingers.",
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
		},
	}
}
