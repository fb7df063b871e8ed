// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"net/http"

	"relay_chat_server/internal/service/chat"
	"relay_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 连接处理器
type WsHandler struct {
	hub *chat.Hub
}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler(hub *chat.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Connect 将 HTTP 连接升级为 WebSocket
// GET /ws/connect?token=xxx
// 身份由 JWT 中间件确认，这里只负责升级和注册
// 连接断开由读协程的错误触发注销，没有单独的登出接口
func (h *WsHandler) Connect(c *gin.Context) {
	userId := currentUserId(c)
	if userId == "" {
		zap.L().Error("WebSocket 握手缺少用户身份")
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "请先登录",
		})
		return
	}
	chat.NewClientInit(c, h.hub, userId)
}
