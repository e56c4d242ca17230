package model

import "time"

// PostDocument 定义了帖子在 Elasticsearch 中的文档结构。
type PostDocument struct {
	PostID          uint      `json:"post_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Keyword         string    `json:"keyword"`
	RelatedKeywords []string  `json:"related_keywords"`
	Status          string    `json:"status"`
	Version         int       `json:"version"`
	MemberID        uint      `json:"member_id"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewPostDocument 把帖子转换为索引文档。
func NewPostDocument(p *Post) PostDocument {
	return PostDocument{
		PostID:          p.ID,
		Title:           p.Title,
		Content:         p.Content,
		Keyword:         p.Keyword,
		RelatedKeywords: p.RelatedKeywords,
		Status:          string(p.Status),
		Version:         p.Version,
		MemberID:        p.MemberID,
		UpdatedAt:       p.UpdatedAt,
	}
}

// PostSearchResult 是返回给前端的搜索结果。
type PostSearchResult struct {
	PostID  uint    `json:"postId"`
	Title   string  `json:"title"`
	Keyword string  `json:"keyword"`
	Status  string  `json:"status"`
	Version int     `json:"version"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}
