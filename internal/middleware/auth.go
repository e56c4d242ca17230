// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"blog-helper-go/internal/service"
	"blog-helper-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// 存入 gin 上下文的键。
const (
	ContextMemberKey = "member"
	ContextEmailKey  = "email"
	ContextClaimsKey = "claims"
	ContextTokenKey  = "token"
)

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证。
// 它会从请求头中提取 token，校验签名、有效期和黑名单，并将当前会员存入 Gin 的上下文中。
func AuthMiddleware(authService service.AuthService, memberService service.MemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "请求未包含授权头")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			abortUnauthorized(c, "无效的授权头格式")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))

		claims, err := authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidCredentials) {
				log.Errorf("[AuthMiddleware] 校验 token 失败: %v", err)
			}
			abortUnauthorized(c, "无效或已过期的 token")
			return
		}

		member, err := memberService.GetByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			// token 有效但会员已不存在
			abortUnauthorized(c, "用户不存在")
			return
		}

		c.Set(ContextMemberKey, member)
		c.Set(ContextEmailKey, member.Email)
		c.Set(ContextClaimsKey, claims)
		c.Set(ContextTokenKey, tokenString)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}
