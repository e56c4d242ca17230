package handler

import (
	"net/http"

	"blog-helper-go/internal/service"
	"blog-helper-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// KeywordHandler 负责关键词分析相关的 API。
type KeywordHandler struct {
	keywordService service.KeywordService
}

// NewKeywordHandler 创建一个新的 KeywordHandler 实例。
func NewKeywordHandler(keywordService service.KeywordService) *KeywordHandler {
	return &KeywordHandler{keywordService: keywordService}
}

// KeywordAnalyzeRequest 定义了关键词分析的请求体结构。
type KeywordAnalyzeRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

// Analyze 同步分析关键词。
func (h *KeywordHandler) Analyze(c *gin.Context) {
	var req KeywordAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("AnalyzeKeyword: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：关键词不能为空")
		return
	}

	resp, err := h.keywordService.Analyze(c.Request.Context(), req.Keyword)
	if err != nil {
		writeError(c, "AnalyzeKeyword", err)
		return
	}
	respondOK(c, "关键词分析成功", resp)
}

// AnalyzeAsync 把分析请求投递到队列，立即返回任务 ID。
func (h *KeywordHandler) AnalyzeAsync(c *gin.Context) {
	member, ok := currentMember(c)
	if !ok {
		return
	}
	var req KeywordAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求负载：关键词不能为空")
		return
	}

	taskID, err := h.keywordService.EnqueueAnalysis(c.Request.Context(), req.Keyword, member.ID)
	if err != nil {
		writeError(c, "AnalyzeKeywordAsync", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"code":    http.StatusAccepted,
		"message": "关键词分析任务已提交",
		"data":    gin.H{"taskId": taskID},
	})
}

// Find 按关键词查询历史分析结果。
func (h *KeywordHandler) Find(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		respondError(c, http.StatusBadRequest, "keyword 参数不能为空")
		return
	}
	resp, err := h.keywordService.FindByKeyword(c.Request.Context(), keyword)
	if err != nil {
		writeError(c, "FindKeyword", err)
		return
	}
	respondOK(c, "查询成功", resp)
}
