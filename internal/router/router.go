// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"relay_chat_server/internal/handler"
	"relay_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
// 除认证入口外的所有路由都在 JWT 认证保护之下
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	// 公开接口（注册/登录/刷新）
	rt.RegisterAuthRoutes(r)

	// 需要认证的接口
	authed := r.Group("/")
	authed.Use(middleware.JWTAuth())
	{
		rt.RegisterUserRoutes(authed)
		rt.RegisterRoomRoutes(authed)
		rt.RegisterMessageRoutes(authed)
		rt.RegisterWebSocketRoutes(authed)
	}
}
