package llm

import (
	"context"
	"errors"
	"time"

	"blog-helper-go/pkg/log"

	"github.com/sethvargo/go-retry"
)

type timeoutClient struct {
	next    Client
	timeout time.Duration
}

// WithTimeout 为每次调用加上超时，超时后返回 KindTimeout 错误。d <= 0 时原样返回 next。
func WithTimeout(next Client, d time.Duration) Client {
	if d <= 0 {
		return next
	}
	return &timeoutClient{next: next, timeout: d}
}

func (c *timeoutClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.next.Complete(ctx, prompt)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return "", NewTimeoutError(err)
	}
	return out, err
}

type retryClient struct {
	next        Client
	maxAttempts int
	delay       time.Duration
}

// minRetryDelay 是重试间隔的下限，retry.NewConstant 不接受非正数。
const minRetryDelay = time.Millisecond

// WithRetry 在失败时以固定间隔重试，总尝试次数不超过 maxAttempts。maxAttempts <= 1 时原样返回 next。
// delay 小于 minRetryDelay 时按 minRetryDelay 处理。
func WithRetry(next Client, maxAttempts int, delay time.Duration) Client {
	if maxAttempts <= 1 {
		return next
	}
	if delay < minRetryDelay {
		delay = minRetryDelay
	}
	return &retryClient{next: next, maxAttempts: maxAttempts, delay: delay}
}

func (c *retryClient) Complete(ctx context.Context, prompt string) (string, error) {
	var result string
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewConstant(c.delay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			log.Infof("[LLMClient] Retrying... attempt: %d", attempt-1)
		}
		out, err := c.next.Complete(ctx, prompt)
		if err != nil {
			// 调用方取消或截止时间已到时不再重试
			if ctx.Err() != nil {
				return err
			}
			log.Warnf("[LLMClient] 第 %d 次调用失败: %v", attempt, err)
			return retry.RetryableError(err)
		}
		result = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}
