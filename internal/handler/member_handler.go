package handler

import (
	"net/http"

	"blog-helper-go/internal/service"
	"blog-helper-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// MemberHandler 负责会员注册和当前会员信息。
type MemberHandler struct {
	memberService service.MemberService
}

// NewMemberHandler 创建一个新的 MemberHandler 实例。
func NewMemberHandler(memberService service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// SignupRequest 定义了注册 API 的请求体结构。
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Nickname string `json:"nickname" binding:"required,min=2,max=10"`
}

// Signup 处理会员注册请求。
func (h *MemberHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Signup: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：请检查邮箱格式、密码长度和昵称长度")
		return
	}

	member, err := h.memberService.Signup(c.Request.Context(), req.Email, req.Password, req.Nickname)
	if err != nil {
		writeError(c, "Signup", err)
		return
	}
	respondOK(c, "注册成功", member)
}

// Me 返回当前登录的会员。
func (h *MemberHandler) Me(c *gin.Context) {
	member, ok := currentMember(c)
	if !ok {
		return
	}
	respondOK(c, "获取用户信息成功", service.NewMemberResponse(member))
}
