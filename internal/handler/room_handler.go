// Package handler 提供 HTTP 请求处理器
// 本文件处理房间相关的 API 请求
package handler

import (
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// RoomHandler 房间请求处理器
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler 创建房间处理器实例
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// CreateRoom 创建房间
// POST /room/createRoom
// 请求体: request.CreateRoomRequest
// 响应: respond.RoomRespond
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req request.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.roomSvc.CreateRoom(currentUserId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetRoomInfo 获取房间详情
// GET /room/getRoomInfo?roomId=xxx
// 响应: respond.RoomRespond
func (h *RoomHandler) GetRoomInfo(c *gin.Context) {
	roomId := c.Query("roomId")
	data, err := h.roomSvc.GetRoomInfo(currentUserId(c), roomId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMyRooms 获取当前用户加入的所有房间
// GET /room/getMyRooms
// 响应: []respond.RoomRespond
func (h *RoomHandler) GetMyRooms(c *gin.Context) {
	data, err := h.roomSvc.GetUserRooms(currentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetPublicRooms 获取所有公开房间
// GET /room/getPublicRooms
// 响应: []respond.RoomRespond
func (h *RoomHandler) GetPublicRooms(c *gin.Context) {
	data, err := h.roomSvc.GetPublicRooms()
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateRoom 更新房间信息（仅限管理员）
// POST /room/updateRoom
// 请求体: request.UpdateRoomRequest
// 响应: nil
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	var req request.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.roomSvc.UpdateRoom(currentUserId(c), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DeleteRoom 解散房间（仅限管理员）
// POST /room/deleteRoom
// 请求体: request.RoomIdRequest
// 响应: nil
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	var req request.RoomIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.roomSvc.DeleteRoom(currentUserId(c), req.RoomId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// JoinRoom 自助加入公开房间
// POST /room/joinRoom
// 请求体: request.RoomIdRequest
// 响应: nil
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req request.RoomIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.roomSvc.JoinRoom(currentUserId(c), req.RoomId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// LeaveRoom 退出房间
// POST /room/leaveRoom
// 请求体: request.RoomIdRequest
// 响应: nil
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	var req request.RoomIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.roomSvc.LeaveRoom(currentUserId(c), req.RoomId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// AddMember 添加房间成员（仅限管理员）
// POST /room/addMember
// 请求体: request.RoomMemberRequest
// 响应: nil
func (h *RoomHandler) AddMember(c *gin.Context) {
	var req request.RoomMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.roomSvc.AddMember(currentUserId(c), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RemoveMember 移除房间成员（仅限管理员）
// POST /room/removeMember
// 请求体: request.RoomMemberRequest
// 响应: nil
func (h *RoomHandler) RemoveMember(c *gin.Context) {
	var req request.RoomMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.roomSvc.RemoveMember(currentUserId(c), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetRoomMembers 获取房间成员列表（仅限成员）
// GET /room/getRoomMembers?roomId=xxx
// 响应: []respond.RoomMemberRespond
func (h *RoomHandler) GetRoomMembers(c *gin.Context) {
	roomId := c.Query("roomId")
	data, err := h.roomSvc.GetRoomMembers(currentUserId(c), roomId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
