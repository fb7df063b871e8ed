// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
// 发送/编辑/删除走 Hub，确保 HTTP 路径和 WebSocket 路径共用同一套
// 授权检查和广播逻辑：HTTP 发的消息同样会实时推送给房间内的连接
package handler

import (
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/service"
	"relay_chat_server/internal/service/chat"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
	hub        *chat.Hub
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService, hub *chat.Hub) *MessageHandler {
	return &MessageHandler{
		messageSvc: messageSvc,
		hub:        hub,
	}
}

// GetRoomMessages 分页获取房间历史消息
// GET /message/getRoomMessages?roomId=xxx&page=1&pageSize=50
// 响应: respond.MessagePageRespond
func (h *MessageHandler) GetRoomMessages(c *gin.Context) {
	var req request.MessagePageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.GetRoomMessages(currentUserId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SendMessage 发送消息
// POST /message/sendMessage
// 请求体: request.SendMessageRequest
// 响应: respond.MessageRespond
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.hub.SendMessage(currentUserId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// EditMessage 编辑消息（仅限作者）
// POST /message/editMessage
// 请求体: request.EditMessageRequest
// 响应: respond.MessageRespond
func (h *MessageHandler) EditMessage(c *gin.Context) {
	var req request.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.hub.EditMessage(currentUserId(c), req.MessageId, req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteMessage 删除消息（仅限作者）
// POST /message/deleteMessage
// 请求体: request.DeleteMessageRequest
// 响应: nil
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	var req request.DeleteMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.hub.DeleteMessage(currentUserId(c), req.MessageId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// AddReaction 添加表情回应
// POST /message/addReaction
// 请求体: request.ReactionRequest
// 响应: nil
func (h *MessageHandler) AddReaction(c *gin.Context) {
	var req request.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.hub.AddReaction(currentUserId(c), req.MessageId, req.Emoji); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RemoveReaction 移除表情回应
// POST /message/removeReaction
// 请求体: request.ReactionRequest
// 响应: nil
func (h *MessageHandler) RemoveReaction(c *gin.Context) {
	var req request.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.hub.RemoveReaction(currentUserId(c), req.MessageId, req.Emoji); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
