// Package router 提供 HTTP 路由注册
// 本文件定义认证相关的路由
package router

import (
	"relay_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由
// 注册/登录/刷新无需认证，登出需要携带 Access Token
func (rt *Router) RegisterAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", rt.handlers.Auth.Register) // 用户注册
		authGroup.POST("/login", rt.handlers.Auth.Login)       // 邮箱密码登录
		authGroup.POST("/refresh", rt.handlers.Auth.Refresh)   // 刷新 Access Token

		// 登出作废 Refresh Token 会话，需要认证
		authGroup.POST("/logout", middleware.JWTAuth(), rt.handlers.Auth.Logout)
	}
}
