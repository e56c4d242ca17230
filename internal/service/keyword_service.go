package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog-helper-go/internal/model"
	"blog-helper-go/internal/repository"
	"blog-helper-go/pkg/llm"
	"blog-helper-go/pkg/log"
	"blog-helper-go/pkg/tasks"

	"github.com/google/uuid"
)

// KeywordTaskPublisher 把关键词分析任务投递到消息队列。
type KeywordTaskPublisher interface {
	PublishKeywordTask(ctx context.Context, task tasks.KeywordAnalysisTask) error
}

// KeywordService 接口定义了关键词分析相关的业务操作。
type KeywordService interface {
	Analyze(ctx context.Context, keyword string) (*KeywordAnalyzeResponse, error)
	FindByKeyword(ctx context.Context, keyword string) ([]KeywordAnalyzeResponse, error)
	EnqueueAnalysis(ctx context.Context, keyword string, memberID uint) (string, error)
}

type keywordService struct {
	llmClient   llm.Client
	keywordRepo repository.KeywordRepository
	publisher   KeywordTaskPublisher
	now         func() time.Time
}

// NewKeywordService 创建一个新的 KeywordService 实例。publisher 为 nil 时不支持异步分析。
func NewKeywordService(llmClient llm.Client, keywordRepo repository.KeywordRepository, publisher KeywordTaskPublisher) KeywordService {
	return &keywordService{
		llmClient:   llmClient,
		keywordRepo: keywordRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// keywordAnalysis 是分析 prompt 要求模型返回的结构。
type keywordAnalysis struct {
	RelatedKeywords []string `json:"relatedKeywords"`
	SuggestedTopics []string `json:"suggestedTopics"`
}

// Analyze 调用模型分析关键词，并把结果作为一条新记录保存。
func (s *keywordService) Analyze(ctx context.Context, keyword string) (*KeywordAnalyzeResponse, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, invalidInput("关键词不能为空")
	}

	raw, err := s.llmClient.Complete(ctx, keywordPrompt(keyword))
	if err != nil {
		log.Errorf("[KeywordService] 调用补全接口失败, keyword: %s, error: %v", keyword, err)
		return nil, &KeywordAnalysisError{Keyword: keyword, Err: err}
	}

	analysis, err := llm.ParseJSON[keywordAnalysis](raw)
	if err != nil {
		log.Errorf("[KeywordService] 补全结果解析失败, keyword: %s, raw: %s", keyword, raw)
		return nil, &KeywordAnalysisError{Keyword: keyword, Err: err}
	}

	record := &model.Keyword{
		OriginalKeyword: keyword,
		RelatedKeywords: nonNil(analysis.RelatedKeywords),
		SuggestedTopics: nonNil(analysis.SuggestedTopics),
		AnalyzedAt:      s.now(),
	}
	if err := s.keywordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("保存关键词分析结果失败: %w", err)
	}

	log.Infof("[KeywordService] 关键词分析完成, keyword: %s, id: %d, related: %d, topics: %d",
		keyword, record.ID, len(record.RelatedKeywords), len(record.SuggestedTopics))
	return newKeywordAnalyzeResponse(record), nil
}

// FindByKeyword 忽略大小写查找已有的分析记录，最新的在前。
func (s *keywordService) FindByKeyword(ctx context.Context, keyword string) ([]KeywordAnalyzeResponse, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, invalidInput("关键词不能为空")
	}
	records, err := s.keywordRepo.FindByOriginalKeyword(ctx, keyword)
	if err != nil {
		return nil, err
	}
	result := make([]KeywordAnalyzeResponse, 0, len(records))
	for i := range records {
		result = append(result, *newKeywordAnalyzeResponse(&records[i]))
	}
	return result, nil
}

// EnqueueAnalysis 把分析请求投递到队列并返回任务 ID，由消费者异步执行 Analyze。
func (s *keywordService) EnqueueAnalysis(ctx context.Context, keyword string, memberID uint) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", invalidInput("关键词不能为空")
	}
	if s.publisher == nil {
		return "", errors.New("异步关键词分析未启用")
	}

	task := tasks.KeywordAnalysisTask{
		TaskID:      uuid.NewString(),
		Keyword:     keyword,
		MemberID:    memberID,
		RequestedAt: s.now(),
	}
	if err := s.publisher.PublishKeywordTask(ctx, task); err != nil {
		log.Errorf("[KeywordService] 投递关键词分析任务失败, keyword: %s, error: %v", keyword, err)
		return "", fmt.Errorf("投递关键词分析任务失败: %w", err)
	}
	log.Infof("[KeywordService] 关键词分析任务已投递, taskID: %s, keyword: %s", task.TaskID, keyword)
	return task.TaskID, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
