package service

import (
	"time"

	"blog-helper-go/internal/model"
)

// PostResponse 是帖子的只读投影。
type PostResponse struct {
	ID              uint             `json:"id"`
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	Status          model.PostStatus `json:"status"`
	Keyword         string           `json:"keyword"`
	RelatedKeywords []string         `json:"relatedKeywords"`
	Version         int              `json:"version"`
	MemberID        uint             `json:"memberId"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func newPostResponse(p *model.Post) *PostResponse {
	related := p.RelatedKeywords
	if related == nil {
		related = []string{}
	}
	return &PostResponse{
		ID:              p.ID,
		Title:           p.Title,
		Content:         p.Content,
		Status:          p.Status,
		Keyword:         p.Keyword,
		RelatedKeywords: related,
		Version:         p.Version,
		MemberID:        p.MemberID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// KeywordAnalyzeResponse 是一次关键词分析的结果。
type KeywordAnalyzeResponse struct {
	ID              uint      `json:"id"`
	OriginalKeyword string    `json:"originalKeyword"`
	RelatedKeywords []string  `json:"relatedKeywords"`
	SuggestedTopics []string  `json:"suggestedTopics"`
	AnalyzedAt      time.Time `json:"analyzedAt"`
}

func newKeywordAnalyzeResponse(k *model.Keyword) *KeywordAnalyzeResponse {
	return &KeywordAnalyzeResponse{
		ID:              k.ID,
		OriginalKeyword: k.OriginalKeyword,
		RelatedKeywords: k.RelatedKeywords,
		SuggestedTopics: k.SuggestedTopics,
		AnalyzedAt:      k.AnalyzedAt,
	}
}

// PostImproveResponse 组合了改进后的帖子和本次改进的原因。
type PostImproveResponse struct {
	ID                uint      `json:"id"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	Version           int       `json:"version"`
	ImprovementReason string    `json:"improvementReason"`
	ImprovedAt        time.Time `json:"improvedAt"`
}

func newPostImproveResponse(p *model.Post, h *model.PostHistory) *PostImproveResponse {
	return &PostImproveResponse{
		ID:                p.ID,
		Title:             p.Title,
		Content:           p.Content,
		Version:           p.Version,
		ImprovementReason: h.ImprovementReason,
		ImprovedAt:        h.CreatedAt,
	}
}

// PostHistoryResponse 是一条历史快照。
type PostHistoryResponse struct {
	ID                uint      `json:"id"`
	Version           int       `json:"version"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	ImprovementReason string    `json:"improvementReason"`
	CreatedAt         time.Time `json:"createdAt"`
}

func newPostHistoryResponse(h *model.PostHistory) PostHistoryResponse {
	return PostHistoryResponse{
		ID:                h.ID,
		Version:           h.Version,
		Title:             h.Title,
		Content:           h.Content,
		ImprovementReason: h.ImprovementReason,
		CreatedAt:         h.CreatedAt,
	}
}

// MemberResponse 不包含密码。
type MemberResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMemberResponse 把会员实体转换为响应。
func NewMemberResponse(m *model.Member) *MemberResponse {
	return &MemberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Nickname:  m.Nickname,
		CreatedAt: m.CreatedAt,
	}
}

// LoginResponse 是登录成功后返回的 token 与会员信息。
type LoginResponse struct {
	Token  string          `json:"token"`
	Member *MemberResponse `json:"member"`
}

// PublishResponse 包含发布后的帖子和 Markdown 归档的下载地址。
type PublishResponse struct {
	Post        *PostResponse `json:"post"`
	ObjectName  string        `json:"objectName"`
	DownloadURL string        `json:"downloadUrl"`
}
