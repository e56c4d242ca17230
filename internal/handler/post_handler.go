package handler

import (
	"net/http"

	"blog-helper-go/internal/model"
	"blog-helper-go/internal/service"
	"blog-helper-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// PostHandler 负责帖子相关的 API 请求。
type PostHandler struct {
	postService    service.PostService
	improveService service.PostImproveService
}

// NewPostHandler 创建一个新的 PostHandler 实例。
func NewPostHandler(postService service.PostService, improveService service.PostImproveService) *PostHandler {
	return &PostHandler{postService: postService, improveService: improveService}
}

// CreateDraftRequest 定义了生成草稿的请求体结构。
type CreateDraftRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

// UpdatePostRequest 定义了手动编辑帖子的请求体结构。
type UpdatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ImprovePostRequest 定义了 AI 改进的请求体结构。
type ImprovePostRequest struct {
	Type                   string  `json:"type" binding:"required"`
	AdditionalInstructions *string `json:"additionalInstructions"`
}

// CreateDraft 根据关键词生成草稿，归属当前登录会员。
func (h *PostHandler) CreateDraft(c *gin.Context) {
	member, ok := currentMember(c)
	if !ok {
		return
	}
	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreateDraft: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：关键词不能为空")
		return
	}

	log.Infof("CreateDraft: authenticated email: %s, keyword: %s", member.Email, req.Keyword)
	resp, err := h.postService.CreateDraft(c.Request.Context(), req.Keyword, member.Email)
	if err != nil {
		writeError(c, "CreateDraft", err)
		return
	}
	respondOK(c, "草稿生成成功", resp)
}

// List 返回全部帖子，最新的在前。
func (h *PostHandler) List(c *gin.Context) {
	resp, err := h.postService.List(c.Request.Context())
	if err != nil {
		writeError(c, "ListPosts", err)
		return
	}
	respondOK(c, "获取帖子列表成功", resp)
}

// Get 返回单篇帖子。
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, "GetPost", err)
		return
	}
	respondOK(c, "获取帖子成功", resp)
}

// Update 手动编辑标题和内容。
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求负载：标题和内容不能为空")
		return
	}
	resp, err := h.postService.Update(c.Request.Context(), id, req.Title, req.Content)
	if err != nil {
		writeError(c, "UpdatePost", err)
		return
	}
	respondOK(c, "更新帖子成功", resp)
}

// Delete 删除帖子及其历史。
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.postService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, "DeletePost", err)
		return
	}
	respondOK(c, "删除帖子成功", nil)
}

// Improve 按指定方向让 AI 改进帖子。
func (h *PostHandler) Improve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ImprovePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求负载：改进方向不能为空")
		return
	}
	improvementType, err := model.ParseImprovementType(req.Type)
	if err != nil {
		respondError(c, http.StatusBadRequest, "未知的改进方向: "+req.Type)
		return
	}

	resp, err := h.improveService.Improve(c.Request.Context(), id, model.ImprovementDirective{
		Type:                   improvementType,
		AdditionalInstructions: req.AdditionalInstructions,
	})
	if err != nil {
		writeError(c, "ImprovePost", err)
		return
	}
	respondOK(c, "帖子改进成功", resp)
}

// Histories 返回帖子的改进历史，最早的在前。
func (h *PostHandler) Histories(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.improveService.ListHistories(c.Request.Context(), id)
	if err != nil {
		writeError(c, "ListHistories", err)
		return
	}
	respondOK(c, "获取改进历史成功", resp)
}

// Publish 发布帖子并返回 Markdown 归档的下载地址。
func (h *PostHandler) Publish(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.postService.Publish(c.Request.Context(), id)
	if err != nil {
		writeError(c, "PublishPost", err)
		return
	}
	respondOK(c, "发布成功", resp)
}

// Search 全文搜索帖子。
func (h *PostHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, http.StatusBadRequest, "q 参数不能为空")
		return
	}
	resp, err := h.postService.Search(c.Request.Context(), query)
	if err != nil {
		writeError(c, "SearchPosts", err)
		return
	}
	respondOK(c, "搜索成功", resp)
}
