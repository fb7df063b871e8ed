// Package router 提供 HTTP 路由注册
// 本文件定义房间相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoomRoutes 注册房间相关路由（需要认证）
// 包括房间创建、管理、成员管理等功能
func (rt *Router) RegisterRoomRoutes(rg *gin.RouterGroup) {
	roomGroup := rg.Group("/room")
	{
		// ===== 房间基本操作 =====
		roomGroup.POST("/createRoom", rt.handlers.Room.CreateRoom)         // 创建房间
		roomGroup.GET("/getRoomInfo", rt.handlers.Room.GetRoomInfo)        // 房间详情（仅成员）
		roomGroup.GET("/getMyRooms", rt.handlers.Room.GetMyRooms)          // 我加入的房间
		roomGroup.GET("/getPublicRooms", rt.handlers.Room.GetPublicRooms)  // 公开房间列表
		roomGroup.POST("/updateRoom", rt.handlers.Room.UpdateRoom)         // 更新房间信息（管理员）
		roomGroup.POST("/deleteRoom", rt.handlers.Room.DeleteRoom)         // 解散房间（管理员）

		// ===== 进出房间 =====
		roomGroup.POST("/joinRoom", rt.handlers.Room.JoinRoom)   // 加入公开房间
		roomGroup.POST("/leaveRoom", rt.handlers.Room.LeaveRoom) // 退出房间

		// ===== 成员管理 =====
		roomGroup.GET("/getRoomMembers", rt.handlers.Room.GetRoomMembers) // 成员列表（仅成员）
		roomGroup.POST("/addMember", rt.handlers.Room.AddMember)          // 添加成员（管理员）
		roomGroup.POST("/removeMember", rt.handlers.Room.RemoveMember)    // 移除成员（自己随时可退，移除他人需管理员）
	}
}
