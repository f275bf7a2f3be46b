package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"test-grading-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TestLoader fetches test definitions from a backing store (e.g., Postgres).
type TestLoader interface {
	LoadTest(ctx context.Context, testID string) (domain.Test, error)
}

// TestRepository caches full test definitions in Redis and falls back
// to a loader on cache miss. The whole definition is stored as JSON:
// SET test:{testID}:def {json}
// Grading needs the complete option sets, so unlike a lightweight
// answer-key cache the definition is cached verbatim.
type TestRepository struct {
	client *redis.Client
	loader TestLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewTestRepository(client *redis.Client, loader TestLoader, ttl time.Duration) *TestRepository {
	return &TestRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *TestRepository) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	key := r.defKey(testID)

	if test, ok := r.fromCache(ctx, key); ok {
		return test, nil
	}

	result, err, _ := r.sf.Do(testID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if test, ok := r.fromCache(ctx, key); ok {
			return test, nil
		}

		test, err := r.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.Test{}, err
		}

		data, err := json.Marshal(test)
		if err != nil {
			return domain.Test{}, fmt.Errorf("marshal test: %w", err)
		}
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()

		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

// Invalidate drops the cached definition so an edited test is reloaded.
func (r *TestRepository) Invalidate(ctx context.Context, testID string) {
	_ = r.client.Del(ctx, r.defKey(testID)).Err()
}

func (r *TestRepository) fromCache(ctx context.Context, key string) (domain.Test, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return domain.Test{}, false
	}
	var test domain.Test
	if err := json.Unmarshal(raw, &test); err != nil {
		return domain.Test{}, false
	}
	return test, true
}

func (r *TestRepository) defKey(testID string) string {
	return "test:" + testID + ":def"
}

func (r *TestRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
