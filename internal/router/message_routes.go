// Package router 提供 HTTP 路由注册
// 本文件定义消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息相关路由（需要认证）
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.GET("/getRoomMessages", rt.handlers.Message.GetRoomMessages) // 分页历史消息
		messageGroup.POST("/sendMessage", rt.handlers.Message.SendMessage)        // 发送消息
		messageGroup.POST("/editMessage", rt.handlers.Message.EditMessage)        // 编辑消息（作者）
		messageGroup.POST("/deleteMessage", rt.handlers.Message.DeleteMessage)    // 删除消息（作者）
		messageGroup.POST("/addReaction", rt.handlers.Message.AddReaction)        // 添加表情回应
		messageGroup.POST("/removeReaction", rt.handlers.Message.RemoveReaction)  // 移除表情回应
	}
}
