package model

import "time"

// PostStatus 表示帖子的发布状态。
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
)

// InitialPostVersion 是新建草稿的版本号。
const InitialPostVersion = 1

// Post 对应于数据库中的 'posts' 表。
// Version 在每次成功改进后严格加一，Title/Content 始终是最新被接受的版本。
// Revision 是写入计数器，手动编辑、发布和改进都会使其加一，用作乐观锁。
type Post struct {
	ID              uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string        `gorm:"type:varchar(255);not null" json:"title"`
	Content         string        `gorm:"type:text;not null" json:"content"`
	Status          PostStatus    `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	Keyword         string        `gorm:"type:varchar(255);not null" json:"keyword"`
	RelatedKeywords []string      `gorm:"type:text;serializer:json" json:"relatedKeywords"`
	Version         int           `gorm:"not null;default:1" json:"version"`
	Revision        int           `gorm:"not null;default:1" json:"-"`
	MemberID        uint          `gorm:"not null;index" json:"memberId"`
	Histories       []PostHistory `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time     `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Post) TableName() string {
	return "posts"
}

// NewDraftPost 创建一个版本号为 1 的草稿。
func NewDraftPost(title, content, keyword string, relatedKeywords []string, memberID uint) *Post {
	return &Post{
		Title:           title,
		Content:         content,
		Status:          PostStatusDraft,
		Keyword:         keyword,
		RelatedKeywords: relatedKeywords,
		Version:         InitialPostVersion,
		Revision:        1,
		MemberID:        memberID,
	}
}

// Improve 在内存中应用一次改进：先对当前版本做快照，再覆盖标题和内容并把版本号加一。
// 返回的历史记录保存的是改进之前的状态，以及产生下一个版本的原因。
func (p *Post) Improve(title, content, reason string, now time.Time) *PostHistory {
	history := PostHistory{
		PostID:            p.ID,
		Version:           p.Version,
		Title:             p.Title,
		Content:           p.Content,
		ImprovementReason: reason,
		CreatedAt:         now,
	}

	p.Version++
	p.Title = title
	p.Content = content
	p.UpdatedAt = now
	p.Histories = append(p.Histories, history)
	return &p.Histories[len(p.Histories)-1]
}

// Edit 手动修改标题和内容，不改变版本号也不产生历史记录。
func (p *Post) Edit(title, content string) {
	p.Title = title
	p.Content = content
}

// Publish 把帖子标记为已发布。重复发布不报错。
func (p *Post) Publish() {
	p.Status = PostStatusPublished
}

// IsDraft 报告帖子是否仍是草稿。
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}
