// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/dto/respond"
)

// AuthService 认证业务接口
// 处理注册、登录、令牌刷新与登出
type AuthService interface {
	// Register 用户注册，成功直接发放令牌
	Register(req request.RegisterRequest) (*respond.LoginRespond, error)
	// Login 邮箱密码登录
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// Refresh 刷新令牌（轮换，旧 Refresh Token 作废）
	Refresh(req request.RefreshTokenRequest) (*respond.LoginRespond, error)
	// Logout 登出，作废当前会话
	Logout(userUuid string) error
}

// UserService 用户业务接口
type UserService interface {
	// GetUserInfo 获取单个用户公开信息
	GetUserInfo(userUuid string) (*respond.UserRespond, error)
	// GetUserList 获取全部用户列表
	GetUserList() ([]respond.UserRespond, error)
	// SearchUsers 按用户名或邮箱模糊搜索
	SearchUsers(query string) ([]respond.UserRespond, error)
	// UpdateProfile 修改当前用户的用户名/邮箱
	UpdateProfile(userUuid string, req request.UpdateProfileRequest) (*respond.UserRespond, error)
}

// RoomService 房间业务接口
// 处理房间的创建、管理和成员管理
type RoomService interface {
	// CreateRoom 创建房间，创建者自动成为管理员
	CreateRoom(creatorUuid string, req request.CreateRoomRequest) (*respond.RoomRespond, error)
	// GetRoomInfo 获取房间详情，仅限成员
	GetRoomInfo(userUuid, roomUuid string) (*respond.RoomRespond, error)
	// GetUserRooms 获取用户加入的所有房间
	GetUserRooms(userUuid string) ([]respond.RoomRespond, error)
	// GetPublicRooms 获取所有公开房间
	GetPublicRooms() ([]respond.RoomRespond, error)
	// UpdateRoom 更新房间信息，仅限管理员
	UpdateRoom(userUuid string, req request.UpdateRoomRequest) error
	// DeleteRoom 解散房间并级联清理数据，仅限管理员
	DeleteRoom(userUuid, roomUuid string) error
	// JoinRoom 自助加入公开房间
	JoinRoom(userUuid, roomUuid string) error
	// AddMember 添加成员，仅限管理员
	AddMember(actorUuid string, req request.RoomMemberRequest) error
	// RemoveMember 移除成员，仅限管理员
	RemoveMember(actorUuid string, req request.RoomMemberRequest) error
	// LeaveRoom 退出房间
	LeaveRoom(userUuid, roomUuid string) error
	// GetRoomMembers 获取房间成员列表，仅限成员
	GetRoomMembers(userUuid, roomUuid string) ([]respond.RoomMemberRespond, error)
}

// MessageService 消息业务接口
// 只负责历史消息查询；发送/编辑/删除走实时层 Hub
type MessageService interface {
	// GetRoomMessages 分页获取房间历史消息（最新的在前）
	GetRoomMessages(userUuid string, req request.MessagePageRequest) (*respond.MessagePageRespond, error)
}
