package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"blog-helper-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProcessor 前 failures 次调用返回 err，之后成功。
type stubProcessor struct {
	mu       sync.Mutex
	err      error
	failures int
	tasks    []tasks.KeywordAnalysisTask
	onCall   func()
}

func (p *stubProcessor) Process(_ context.Context, task tasks.KeywordAnalysisTask) error {
	p.mu.Lock()
	p.tasks = append(p.tasks, task)
	n := len(p.tasks)
	p.mu.Unlock()
	if p.onCall != nil {
		p.onCall()
	}
	if n <= p.failures {
		return p.err
	}
	return nil
}

func (p *stubProcessor) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: map[string]int64{}}
}

func (c *memoryCounter) Increment(_ context.Context, taskID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.counts[taskID]++
	return c.counts[taskID], nil
}

func (c *memoryCounter) Clear(_ context.Context, taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, taskID)
	return nil
}

// fetchResult 是 scriptedReader 的一步：返回消息或错误。
type fetchResult struct {
	msg kafka.Message
	err error
}

// scriptedReader 依次返回预置结果，用完后返回 context.Canceled。
type scriptedReader struct {
	mu        sync.Mutex
	steps     []fetchResult
	committed []kafka.Message
	closed    bool
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.steps) == 0 {
		return kafka.Message{}, context.Canceled
	}
	step := r.steps[0]
	r.steps = r.steps[1:]
	return step.msg, step.err
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func taskMessage(t *testing.T, task tasks.KeywordAnalysisTask) kafka.Message {
	t.Helper()
	b, err := json.Marshal(task)
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func newTestConsumer(reader messageReader, proc TaskProcessor, counter AttemptCounter) *Consumer {
	return &Consumer{
		reader:       reader,
		processor:    proc,
		attempts:     counter,
		topic:        "keyword-analysis",
		retryDelay:   time.Millisecond,
		fetchBackoff: time.Millisecond,
	}
}

func TestRunCommitsSuccessfulTask(t *testing.T) {
	reader := &scriptedReader{steps: []fetchResult{
		{msg: taskMessage(t, tasks.KeywordAnalysisTask{TaskID: "t1", Keyword: "coffee"})},
	}}
	proc := &stubProcessor{}
	counter := newMemoryCounter()
	counter.counts["t1"] = 1

	newTestConsumer(reader, proc, counter).Run(context.Background())

	assert.Len(t, reader.committed, 1)
	require.Equal(t, 1, proc.calls())
	assert.Equal(t, "coffee", proc.tasks[0].Keyword)
	assert.NotContains(t, counter.counts, "t1")
	assert.True(t, reader.closed)
}

func TestRunRetriesFailingTaskUntilMaxAttempts(t *testing.T) {
	reader := &scriptedReader{steps: []fetchResult{
		{msg: taskMessage(t, tasks.KeywordAnalysisTask{TaskID: "t2", Keyword: "coffee"})},
		{msg: taskMessage(t, tasks.KeywordAnalysisTask{TaskID: "t3", Keyword: "tea"})},
	}}
	proc := &stubProcessor{err: errors.New("llm down"), failures: MaxAttempts}
	counter := newMemoryCounter()

	newTestConsumer(reader, proc, counter).Run(context.Background())

	// 第一条任务被处理 MaxAttempts 次后放弃，第二条一次成功
	require.Equal(t, MaxAttempts+1, proc.calls())
	for i := 0; i < MaxAttempts; i++ {
		assert.Equal(t, "t2", proc.tasks[i].TaskID)
	}
	assert.Equal(t, "t3", proc.tasks[MaxAttempts].TaskID)
	assert.Len(t, reader.committed, 2)
	assert.Empty(t, counter.counts)
}

func TestRunRecoversAfterTransientFailure(t *testing.T) {
	reader := &scriptedReader{steps: []fetchResult{
		{msg: taskMessage(t, tasks.KeywordAnalysisTask{TaskID: "t4", Keyword: "coffee"})},
	}}
	proc := &stubProcessor{err: errors.New("timeout"), failures: 2}
	counter := newMemoryCounter()

	newTestConsumer(reader, proc, counter).Run(context.Background())

	assert.Equal(t, 3, proc.calls())
	assert.Len(t, reader.committed, 1)
	assert.NotContains(t, counter.counts, "t4")
}

func TestRunContinuesAttemptCountAfterRestart(t *testing.T) {
	reader := &scriptedReader{steps: []fetchResult{
		{msg: taskMessage(t, tasks.KeywordAnalysisTask{TaskID: "t5", Keyword: "coffee"})},
	}}
	proc := &stubProcessor{err: errors.New("llm down"), failures: 10}
	counter := newMemoryCounter()
	counter.counts["t5"] = MaxAttempts - 1

	newTestConsumer(reader, proc, counter).Run(context.Background())

	assert.Equal(t, 1, proc.calls())
	assert.Len(t, reader.committed, 1)
}

func TestRunRetriesLocallyWhenCounterUnavailable(t *testing.T) {
	reader := &scriptedReader{steps: []fetchResult{
		{msg: taskMessage(t, tasks.KeywordAnalysisTask{TaskID: "t6", Keyword: "coffee"})},
	}}
	proc := &stubProcessor{err: errors.New("llm down"), failures: 10}
	counter := newMemoryCounter()
	counter.err = errors.New("redis down")

	newTestConsumer(reader, proc, counter).Run(context.Background())

	assert.Equal(t, MaxAttempts, proc.calls())
	assert.Len(t, reader.committed, 1)
}

func TestRunSurvivesFetchErrors(t *testing.T) {
	reader := &scriptedReader{steps: []fetchResult{
		{err: errors.New("broker unavailable")},
		{err: errors.New("broker unavailable")},
		{msg: taskMessage(t, tasks.KeywordAnalysisTask{TaskID: "t7", Keyword: "go"})},
		{msg: kafka.Message{Value: []byte("garbage")}},
	}}
	proc := &stubProcessor{}

	newTestConsumer(reader, proc, newMemoryCounter()).Run(context.Background())

	assert.Equal(t, 1, proc.calls())
	assert.Len(t, reader.committed, 2)
	assert.True(t, reader.closed)
}

func TestRunKeepsOffsetWhenStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{steps: []fetchResult{
		{msg: taskMessage(t, tasks.KeywordAnalysisTask{TaskID: "t8", Keyword: "coffee"})},
	}}
	proc := &stubProcessor{err: errors.New("llm down"), failures: 10, onCall: cancel}

	newTestConsumer(reader, proc, newMemoryCounter()).Run(ctx)

	assert.Equal(t, 1, proc.calls())
	assert.Empty(t, reader.committed)
}

func TestBrokerList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, brokerList(" a:9092, ,b:9092"))
	assert.Empty(t, brokerList(""))
}
