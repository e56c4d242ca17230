// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"blog-helper-go/internal/model"
	"blog-helper-go/internal/service"
	"blog-helper-go/pkg/llm"
	"blog-helper-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// respondOK 写出统一的成功响应。
func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": message,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
	})
}

// statusFor 把业务错误映射为 HTTP 状态码和给用户看的信息。
func statusFor(err error) (int, string) {
	var parseErr *llm.ParseError
	var analysisErr *service.KeywordAnalysisError
	var generationErr *service.PostGenerationError

	switch {
	case errors.Is(err, service.ErrPostNotFound):
		return http.StatusNotFound, "帖子不存在"
	case errors.Is(err, service.ErrMemberNotFound):
		return http.StatusNotFound, "用户不存在"
	case errors.Is(err, service.ErrVersionConflict):
		return http.StatusConflict, "帖子已被其他请求修改，请刷新后重试"
	case errors.Is(err, service.ErrEmailDuplicate):
		return http.StatusConflict, "该邮箱已被注册"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "邮箱或密码错误"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, llm.ErrTimeout):
		return http.StatusGatewayTimeout, "AI 服务响应超时"
	case errors.Is(err, llm.ErrClient), errors.Is(err, llm.ErrServer):
		return http.StatusServiceUnavailable, "AI 服务暂时不可用"
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, "AI 服务返回了无法解析的结果"
	case errors.As(err, &analysisErr):
		return http.StatusBadGateway, "关键词分析失败"
	case errors.As(err, &generationErr):
		return http.StatusBadGateway, "帖子生成失败"
	default:
		return http.StatusInternalServerError, "服务器内部错误"
	}
}

// writeError 记录错误并写出统一的错误响应，不向客户端暴露内部细节。
func writeError(c *gin.Context, op string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("[%s] 请求失败, status: %d, error: %v", op, status, err)
	} else {
		log.Warnf("[%s] 请求失败, status: %d, error: %v", op, status, err)
	}
	respondError(c, status, message)
}

// parseID 读取路径中的正整数 ID。
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "无效的 ID")
		return 0, false
	}
	return uint(id), true
}

// currentMember 取出认证中间件放入上下文的会员。
func currentMember(c *gin.Context) (*model.Member, bool) {
	v, exists := c.Get("member")
	if !exists {
		respondError(c, http.StatusUnauthorized, "无法获取用户信息")
		return nil, false
	}
	member, ok := v.(*model.Member)
	if !ok {
		respondError(c, http.StatusUnauthorized, "无法获取用户信息")
		return nil, false
	}
	return member, true
}
