// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
// 遵循依赖倒置原则，通过构造函数注入 Service 依赖
package handler

import (
	"relay_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Room    *RoomHandler
	Message *MessageHandler
	Ws      *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svc.Auth),
		User:    NewUserHandler(svc.User),
		Room:    NewRoomHandler(svc.Room),
		Message: NewMessageHandler(svc.Message, svc.Hub),
		Ws:      NewWsHandler(svc.Hub),
	}
}

// currentUserId 从上下文取 JWT 中间件写入的用户 ID
func currentUserId(c *gin.Context) string {
	return c.GetString("user_id")
}
