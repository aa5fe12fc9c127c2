package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/redis/go-redis/v9"
)

// maxUpdateAttempts bounds optimistic-lock retries on a contended run key
const maxUpdateAttempts = 5

// RedisRunRepository implements RunRepository on Redis.
//
// Each run is a JSON string at {prefix}run:{traceId}. Two sorted sets index
// it: {prefix}runs:recent scored by creation time and {prefix}runs:running
// scored by last update, holding only runs still in progress.
type RedisRunRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRunRepository creates a run repository; ttl <= 0 keeps runs forever
func NewRedisRunRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisRunRepository {
	return &RedisRunRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRunRepository) runKey(traceID string) string {
	return fmt.Sprintf("%srun:%s", r.prefix, traceID)
}

func (r *RedisRunRepository) recentKey() string {
	return r.prefix + "runs:recent"
}

func (r *RedisRunRepository) runningKey() string {
	return r.prefix + "runs:running"
}

// Save writes the run and refreshes both indexes
func (r *RedisRunRepository) Save(ctx context.Context, run *models.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		r.write(ctx, pipe, run, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (r *RedisRunRepository) write(ctx context.Context, pipe redis.Pipeliner, run *models.Run, data []byte) {
	pipe.Set(ctx, r.runKey(run.TraceID), data, r.ttl)
	pipe.ZAdd(ctx, r.recentKey(), redis.Z{
		Score:  float64(run.CreatedAt.UnixMilli()),
		Member: run.TraceID,
	})
	if run.Status == models.RunStatusRunning {
		pipe.ZAdd(ctx, r.runningKey(), redis.Z{
			Score:  float64(run.UpdatedAt.UnixMilli()),
			Member: run.TraceID,
		})
	} else {
		pipe.ZRem(ctx, r.runningKey(), run.TraceID)
	}
}

// Get retrieves a run by trace id
func (r *RedisRunRepository) Get(ctx context.Context, traceID string) (*models.Run, error) {
	data, err := r.client.Get(ctx, r.runKey(traceID)).Bytes()
	if err == redis.Nil {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return decodeRun(data)
}

// Update applies patch under WATCH so concurrent writers retry instead of
// overwriting each other
func (r *RedisRunRepository) Update(ctx context.Context, traceID string, patch models.RunPatch) (*models.Run, error) {
	key := r.runKey(traceID)
	var updated *models.Run

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get run: %w", err)
		}

		run, err := decodeRun(data)
		if err != nil {
			return err
		}
		patch.Apply(run, time.Now().UTC())

		data, err = json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshaling run: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.write(ctx, pipe, run, data)
			return nil
		})
		if err != nil {
			return err
		}

		updated = run
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, fmt.Errorf("failed to update run %s: too much contention", traceID)
}

// ListRecent retrieves the newest runs first; limit <= 0 returns all
func (r *RedisRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.Run, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := r.client.ZRevRange(ctx, r.recentKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return r.load(ctx, ids)
}

// ListStale retrieves running runs not updated since olderThan
func (r *RedisRunRepository) ListStale(ctx context.Context, olderThan time.Time) ([]*models.Run, error) {
	ids, err := r.client.ZRangeByScore(ctx, r.runningKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(olderThan.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list stale runs: %w", err)
	}
	return r.load(ctx, ids)
}

// Ping verifies Redis connectivity
func (r *RedisRunRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// load fetches run documents in one round trip, dropping ids whose key
// has already expired
func (r *RedisRunRepository) load(ctx context.Context, ids []string) ([]*models.Run, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.runKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}

	runs := make([]*models.Run, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		run, err := decodeRun([]byte(s))
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
