package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 汇总了所有需要注册路由的处理器。
type Handlers struct {
	Member  *MemberHandler
	Auth    *AuthHandler
	Keyword *KeywordHandler
	Post    *PostHandler
}

// RegisterRoutes 把全部 API 注册到 /api 下，authMiddleware 保护除注册和登录以外的接口。
func RegisterRoutes(r gin.IRouter, h Handlers, authMiddleware gin.HandlerFunc) {
	api := r.Group("/api")

	// 无需认证的路由
	api.POST("/members/signup", h.Member.Signup)
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(authMiddleware)
	{
		authed.POST("/auth/logout", h.Auth.Logout)
		authed.GET("/members/me", h.Member.Me)

		keywords := authed.Group("/keywords")
		{
			keywords.POST("/analyze", h.Keyword.Analyze)
			keywords.POST("/analyze/async", h.Keyword.AnalyzeAsync)
			keywords.GET("", h.Keyword.Find)
		}

		posts := authed.Group("/posts")
		{
			posts.POST("/drafts", h.Post.CreateDraft)
			posts.GET("", h.Post.List)
			posts.GET("/search", h.Post.Search)
			posts.GET("/:id", h.Post.Get)
			posts.PUT("/:id", h.Post.Update)
			posts.DELETE("/:id", h.Post.Delete)
			posts.POST("/:id/improve", h.Post.Improve)
			posts.GET("/:id/histories", h.Post.Histories)
			posts.POST("/:id/publish", h.Post.Publish)
		}
	}
}
