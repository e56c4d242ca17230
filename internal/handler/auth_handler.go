package handler

import (
	"net/http"

	"blog-helper-go/internal/service"
	"blog-helper-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责登录和登出。
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest 定义了登录 API 的请求体结构。
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理登录请求。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：邮箱和密码不能为空")
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, "Login", err)
		return
	}
	log.Infof("Member '%s' logged in successfully", req.Email)
	respondOK(c, "登录成功", resp)
}

// Logout 使当前 token 失效。
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString := c.GetString("token")
	if err := h.authService.Logout(c.Request.Context(), tokenString); err != nil {
		writeError(c, "Logout", err)
		return
	}
	respondOK(c, "登出成功", nil)
}
