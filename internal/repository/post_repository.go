package repository

import (
	"context"
	"errors"

	"blog-helper-go/internal/model"

	"gorm.io/gorm"
)

// ErrVersionConflict 表示帖子在读取之后已被其他请求修改，本次写入被拒绝。
var ErrVersionConflict = errors.New("post version conflict")

// PostRepository 接口定义了帖子及其历史快照的持久化操作。
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	FindAll(ctx context.Context) ([]model.Post, error)
	// Update 保存手动编辑和发布状态。只有当数据库中的 revision 仍为 post.Revision 时才会更新，
	// 否则返回 ErrVersionConflict；帖子不存在时返回 gorm.ErrRecordNotFound。
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id uint) error
	// ApplyImprovement 在同一事务中写入新版本和历史快照。
	// 只有当数据库中的版本号仍为 expectedVersion 且 revision 仍为 post.Revision 时才会更新，
	// 否则返回 ErrVersionConflict。
	ApplyImprovement(ctx context.Context, post *model.Post, expectedVersion int, history *model.PostHistory) error
	FindHistories(ctx context.Context, postID uint) ([]model.PostHistory, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建一个新的 PostRepository 实例。
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create 插入一篇新帖子，回填 ID。
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit("Histories").Create(post).Error
}

// FindByID 根据 ID 查找帖子，找不到时返回 gorm.ErrRecordNotFound。
func (r *postRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindAll 返回全部帖子，按创建时间倒序。
func (r *postRepository) FindAll(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&posts).Error
	return posts, err
}

// Update 保存手动编辑和发布状态，不触碰版本号，只推进 revision。
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	result := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND revision = ?", post.ID, post.Revision).
		Updates(map[string]interface{}{
			"title":      post.Title,
			"content":    post.Content,
			"status":     post.Status,
			"revision":   post.Revision + 1,
			"updated_at": post.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrConflict(ctx, post.ID)
	}
	post.Revision++
	return nil
}

// missingOrConflict 区分条件更新未命中的两种原因。
func (r *postRepository) missingOrConflict(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrVersionConflict
}

// Delete 删除帖子及其全部历史快照。
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.PostHistory{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ApplyImprovement 用乐观锁写入改进结果。
func (r *postRepository) ApplyImprovement(ctx context.Context, post *model.Post, expectedVersion int, history *model.PostHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Post{}).
			Where("id = ? AND version = ? AND revision = ?", post.ID, expectedVersion, post.Revision).
			Updates(map[string]interface{}{
				"title":      post.Title,
				"content":    post.Content,
				"version":    post.Version,
				"revision":   post.Revision + 1,
				"updated_at": post.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}
		if err := tx.Create(history).Error; err != nil {
			return err
		}
		post.Revision++
		return nil
	})
}

// FindHistories 返回帖子的全部历史快照，按创建顺序排列。
func (r *postRepository) FindHistories(ctx context.Context, postID uint) ([]model.PostHistory, error) {
	var histories []model.PostHistory
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC").Find(&histories).Error
	return histories, err
}
