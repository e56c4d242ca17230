package model

import "time"

// Keyword 记录一次关键词分析的结果。每次分析都插入新行，不去重也不修改。
type Keyword struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OriginalKeyword string    `gorm:"type:varchar(255);not null;index" json:"originalKeyword"`
	RelatedKeywords []string  `gorm:"type:text;serializer:json" json:"relatedKeywords"`
	SuggestedTopics []string  `gorm:"type:text;serializer:json" json:"suggestedTopics"`
	AnalyzedAt      time.Time `gorm:"not null" json:"analyzedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Keyword) TableName() string {
	return "keywords"
}
