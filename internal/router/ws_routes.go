// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 相关路由（需要认证）
// 浏览器握手无法自定义 Header，JWT 中间件支持 ?token= 查询参数
// 请求示例: ws://host:port/ws/connect?token=xxx
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/connect", rt.handlers.Ws.Connect)
}
