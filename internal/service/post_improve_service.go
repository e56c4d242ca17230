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

	"gorm.io/gorm"
)

// PostImproveService 接口定义了 AI 改进与历史查询。
type PostImproveService interface {
	Improve(ctx context.Context, postID uint, directive model.ImprovementDirective) (*PostImproveResponse, error)
	ListHistories(ctx context.Context, postID uint) ([]PostHistoryResponse, error)
}

type postImproveService struct {
	llmClient llm.Client
	postRepo  repository.PostRepository
	indexer   PostIndexer
	now       func() time.Time
}

// NewPostImproveService 创建一个新的 PostImproveService 实例。indexer 可以为 nil。
func NewPostImproveService(llmClient llm.Client, postRepo repository.PostRepository, indexer PostIndexer) PostImproveService {
	return &postImproveService{
		llmClient: llmClient,
		postRepo:  postRepo,
		indexer:   indexer,
		now:       time.Now,
	}
}

// postImprovement 是改进 prompt 要求模型返回的结构。
type postImprovement struct {
	Title             string `json:"title"`
	Content           string `json:"content"`
	ImprovementReason string `json:"improvementReason"`
}

func (p *postImprovement) Validate() error {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
		return errors.New("title and content are required")
	}
	return nil
}

// Improve 让模型按指定方向改写帖子。
// 成功时版本号加一，并保存一条改进前状态的历史快照；任何失败都不会修改帖子。
func (s *postImproveService) Improve(ctx context.Context, postID uint, directive model.ImprovementDirective) (*PostImproveResponse, error) {
	if !directive.Type.Valid() {
		return nil, invalidInput("未知的改进方向: %q", directive.Type)
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	raw, err := s.llmClient.Complete(ctx, improvePrompt(post, directive))
	if err != nil {
		log.Errorf("[PostImproveService] 调用补全接口失败, postID: %d, type: %s, error: %v", postID, directive.Type, err)
		return nil, fmt.Errorf("改进帖子 %d 失败: %w", postID, err)
	}
	improvement, err := llm.ParseJSON[postImprovement](raw)
	if err != nil {
		log.Errorf("[PostImproveService] 改进结果解析失败, postID: %d, raw: %s", postID, raw)
		return nil, fmt.Errorf("改进帖子 %d 失败: %w", postID, err)
	}

	expectedVersion := post.Version
	history := post.Improve(improvement.Title, improvement.Content, improvement.ImprovementReason, s.now())
	if err := s.postRepo.ApplyImprovement(ctx, post, expectedVersion, history); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			log.Warnf("[PostImproveService] 帖子已被并发修改, postID: %d, expectedVersion: %d", postID, expectedVersion)
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("保存改进结果失败: %w", err)
	}
	log.Infof("[PostImproveService] 帖子改进成功, postID: %d, version: %d -> %d", postID, expectedVersion, post.Version)

	if s.indexer != nil {
		if err := s.indexer.IndexPost(ctx, model.NewPostDocument(post)); err != nil {
			log.Warnf("[PostImproveService] 索引帖子失败, postID: %d, error: %v", postID, err)
		}
	}
	return newPostImproveResponse(post, history), nil
}

// ListHistories 按写入顺序返回帖子的历史快照，最早的改进在前。
func (s *postImproveService) ListHistories(ctx context.Context, postID uint) ([]PostHistoryResponse, error) {
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}
	histories, err := s.postRepo.FindHistories(ctx, postID)
	if err != nil {
		return nil, err
	}
	result := make([]PostHistoryResponse, 0, len(histories))
	for i := range histories {
		result = append(result, newPostHistoryResponse(&histories[i]))
	}
	return result, nil
}

func (s *postImproveService) findPost(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}
