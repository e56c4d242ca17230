// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Member 对应于数据库中的 'members' 表，是帖子的所有者。
type Member struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_member_email" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Nickname  string    `gorm:"type:varchar(50);not null" json:"nickname"`
	Posts     []Post    `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Member) TableName() string {
	return "members"
}
