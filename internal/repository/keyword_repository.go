package repository

import (
	"context"

	"blog-helper-go/internal/model"

	"gorm.io/gorm"
)

// KeywordRepository 保存关键词分析结果。记录只追加，不更新。
type KeywordRepository interface {
	Create(ctx context.Context, keyword *model.Keyword) error
	FindByOriginalKeyword(ctx context.Context, keyword string) ([]model.Keyword, error)
}

type keywordRepository struct {
	db *gorm.DB
}

// NewKeywordRepository 创建一个新的 KeywordRepository 实例。
func NewKeywordRepository(db *gorm.DB) KeywordRepository {
	return &keywordRepository{db: db}
}

// Create 插入一条新的分析记录。
func (r *keywordRepository) Create(ctx context.Context, keyword *model.Keyword) error {
	return r.db.WithContext(ctx).Create(keyword).Error
}

// FindByOriginalKeyword 忽略大小写查找同一关键词的全部分析记录，最新的在前。
func (r *keywordRepository) FindByOriginalKeyword(ctx context.Context, keyword string) ([]model.Keyword, error) {
	var keywords []model.Keyword
	err := r.db.WithContext(ctx).
		Where("LOWER(original_keyword) = LOWER(?)", keyword).
		Order("analyzed_at DESC").
		Order("id DESC").
		Find(&keywords).Error
	return keywords, err
}
