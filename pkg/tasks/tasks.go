// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// KeywordAnalysisTask 是一次排队执行的关键词分析请求。
type KeywordAnalysisTask struct {
	TaskID      string    `json:"task_id"`
	Keyword     string    `json:"keyword"`
	MemberID    uint      `json:"member_id"`
	RequestedAt time.Time `json:"requested_at"`
}
