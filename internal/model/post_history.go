package model

import "time"

// PostHistory 是一次改进前的帖子快照，创建后不再修改，随帖子级联删除。
// Version/Title/Content 是改进之前的值，ImprovementReason 解释了为什么产生了 Version+1。
type PostHistory struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID            uint      `gorm:"not null;index" json:"postId"`
	Version           int       `gorm:"not null" json:"version"`
	Title             string    `gorm:"type:varchar(255);not null" json:"title"`
	Content           string    `gorm:"type:text;not null" json:"content"`
	ImprovementReason string    `gorm:"type:text" json:"improvementReason"`
	CreatedAt         time.Time `gorm:"not null" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (PostHistory) TableName() string {
	return "post_histories"
}
