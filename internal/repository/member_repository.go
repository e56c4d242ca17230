// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"

	"blog-helper-go/internal/model"

	"gorm.io/gorm"
)

// MemberRepository 接口定义了会员数据的持久化操作。
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	FindByEmail(ctx context.Context, email string) (*model.Member, error)
	FindByID(ctx context.Context, id uint) (*model.Member, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// memberRepository 是 MemberRepository 接口的 GORM 实现。
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建一个新的 MemberRepository 实例。
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create 在数据库中创建一个新的会员记录。
func (r *memberRepository) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindByEmail 根据邮箱查找会员，找不到时返回 gorm.ErrRecordNotFound。
func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByID 根据 ID 查找会员。
func (r *memberRepository) FindByID(ctx context.Context, id uint) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ExistsByEmail 报告该邮箱是否已被注册。
func (r *memberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Member{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
