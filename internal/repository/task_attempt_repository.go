package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TaskAttemptRepository 记录异步任务的尝试次数，消费者据此决定是否放弃。
type TaskAttemptRepository interface {
	Increment(ctx context.Context, taskID string) (int64, error)
	Clear(ctx context.Context, taskID string) error
}

type redisTaskAttemptRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewTaskAttemptRepository 创建一个新的 TaskAttemptRepository 实例。
func NewTaskAttemptRepository(redisClient *redis.Client) TaskAttemptRepository {
	return &redisTaskAttemptRepository{redisClient: redisClient, ttl: 24 * time.Hour}
}

func attemptKey(taskID string) string {
	return fmt.Sprintf("task:%s:attempts", taskID)
}

// Increment 把尝试次数加一并返回新值。
func (r *redisTaskAttemptRepository) Increment(ctx context.Context, taskID string) (int64, error) {
	key := attemptKey(taskID)
	n, err := r.redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment task attempts: %w", err)
	}
	if n == 1 {
		r.redisClient.Expire(ctx, key, r.ttl)
	}
	return n, nil
}

// Clear 删除计数。
func (r *redisTaskAttemptRepository) Clear(ctx context.Context, taskID string) error {
	return r.redisClient.Del(ctx, attemptKey(taskID)).Err()
}
