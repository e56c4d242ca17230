// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"blog-helper-go/internal/config"
	"blog-helper-go/pkg/log"
	"blog-helper-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
)

// MaxAttempts 是一条任务最多被处理的次数，达到后提交 offset 放弃该任务。
const MaxAttempts = 3

// TaskProcessor 定义了处理关键词分析任务的接口，使消费者与具体业务解耦。
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.KeywordAnalysisTask) error
}

// AttemptCounter 记录任务失败次数。
type AttemptCounter interface {
	Increment(ctx context.Context, taskID string) (int64, error)
	Clear(ctx context.Context, taskID string) error
}

// Producer 负责投递关键词分析任务。
type Producer struct {
	writer *kafka.Writer
}

func brokerList(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokerList(cfg.Brokers)...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: w}
}

// PublishKeywordTask 发送一个关键词分析任务，以关键词作为消息 key。
func (p *Producer) PublishKeywordTask(ctx context.Context, task tasks.KeywordAnalysisTask) error {
	value, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.Keyword),
		Value: value,
	})
}

// Close 关闭生产者。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// messageReader 是消费者用到的 kafka.Reader 方法子集。
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer 从 Kafka 拉取任务并交给 TaskProcessor 处理。
// FetchMessage 不会重新投递未提交的消息，因此失败的任务在 handle 内部重试，
// 失败次数记录在 Redis 中，进程重启后重新投递的任务会接着之前的次数计算。
type Consumer struct {
	reader       messageReader
	processor    TaskProcessor
	attempts     AttemptCounter
	topic        string
	retryDelay   time.Duration
	fetchBackoff time.Duration
}

// NewConsumer 创建一个消费者。
func NewConsumer(cfg config.KafkaConfig, processor TaskProcessor, attempts AttemptCounter) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokerList(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		reader:       r,
		processor:    processor,
		attempts:     attempts,
		topic:        cfg.Topic,
		retryDelay:   time.Second,
		fetchBackoff: time.Second,
	}
}

// Run 持续消费直到 ctx 被取消。拉取失败时等待 fetchBackoff 后继续。
func (c *Consumer) Run(ctx context.Context) {
	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", c.topic)
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				log.Info("Kafka 消费者已停止")
				return
			}
			log.Error("从 Kafka 读取消息失败", err)
			select {
			case <-ctx.Done():
				log.Info("Kafka 消费者已停止")
				return
			case <-time.After(c.fetchBackoff):
			}
			continue
		}
		if c.handle(ctx, m) {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
			}
		}
	}
}

// handle 处理一条消息并返回是否应提交 offset。
// 解析失败、处理成功或累计失败达到 MaxAttempts 时提交；只有 ctx 被取消导致中断时不提交，
// 让下一次启动的消费者重新拿到这条消息。
func (c *Consumer) handle(ctx context.Context, m kafka.Message) bool {
	log.Infof("收到 Kafka 消息: offset %d", m.Offset)

	var task tasks.KeywordAnalysisTask
	if err := json.Unmarshal(m.Value, &task); err != nil {
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
		return true
	}

	log.Infof("开始处理关键词分析任务: taskID=%s, keyword=%s", task.TaskID, task.Keyword)
	delay := c.retryDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	backoff := retry.WithMaxRetries(MaxAttempts-1, retry.NewConstant(delay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.processor.Process(ctx, task)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		log.Errorf("处理关键词分析任务失败: taskID=%s, error: %v", task.TaskID, err)

		attempts, incErr := c.attempts.Increment(ctx, task.TaskID)
		if incErr != nil {
			// Redis 不可用时只按本地次数重试
			log.Errorf("记录任务失败次数失败: %v", incErr)
			return retry.RetryableError(err)
		}
		if attempts >= MaxAttempts {
			return err
		}
		return retry.RetryableError(err)
	})

	if err != nil && ctx.Err() != nil {
		log.Warnf("消费者停止，关键词分析任务未完成，保留 offset: taskID=%s", task.TaskID)
		return false
	}
	if err != nil {
		log.Errorf("关键词分析任务多次失败(>=%d)，提交 offset 放弃该任务: taskID=%s", MaxAttempts, task.TaskID)
	} else {
		log.Infof("关键词分析任务处理成功: taskID=%s", task.TaskID)
	}
	if clearErr := c.attempts.Clear(ctx, task.TaskID); clearErr != nil {
		log.Warnf("清除任务失败次数失败: taskID=%s, error: %v", task.TaskID, clearErr)
	}
	return true
}
