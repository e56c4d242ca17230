// Package pipeline 定义了异步关键词分析任务的处理流程。
package pipeline

import (
	"context"
	"strings"

	"blog-helper-go/internal/service"
	"blog-helper-go/pkg/log"
	"blog-helper-go/pkg/tasks"
)

// Processor 把队列中的任务交给 KeywordService 执行。
type Processor struct {
	keywordService service.KeywordService
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(keywordService service.KeywordService) *Processor {
	return &Processor{keywordService: keywordService}
}

// Process 执行一次关键词分析，结果由 KeywordService 保存。
func (p *Processor) Process(ctx context.Context, task tasks.KeywordAnalysisTask) error {
	if strings.TrimSpace(task.Keyword) == "" {
		// 空关键词永远不会成功，直接丢弃
		log.Warnf("[Processor] 任务关键词为空, 跳过, taskID: %s", task.TaskID)
		return nil
	}

	log.Infof("[Processor] 开始分析关键词, taskID: %s, keyword: %s, memberID: %d", task.TaskID, task.Keyword, task.MemberID)
	resp, err := p.keywordService.Analyze(ctx, task.Keyword)
	if err != nil {
		log.Errorf("[Processor] 关键词分析失败, taskID: %s, error: %v", task.TaskID, err)
		return err
	}
	log.Infof("[Processor] 关键词分析完成, taskID: %s, keywordID: %d", task.TaskID, resp.ID)
	return nil
}
