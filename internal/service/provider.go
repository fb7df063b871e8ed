// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"relay_chat_server/internal/dao/mysql/repository"
	myredis "relay_chat_server/internal/dao/redis"
	"relay_chat_server/internal/infrastructure/mq"
	"relay_chat_server/internal/service/auth"
	"relay_chat_server/internal/service/chat"
	"relay_chat_server/internal/service/message"
	"relay_chat_server/internal/service/room"
	"relay_chat_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	Auth    AuthService
	User    UserService
	Room    RoomService
	Message MessageService
	// Hub 实时聊天中枢，消息收发和事件广播都经过它
	Hub *chat.Hub
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 先创建 Hub，它是房间服务的成员变化通知目标
//  2. 再创建各个 Service 实例，注入 Repository/缓存/Hub 依赖
//  3. 返回 Services 聚合
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService, journal mq.EventJournal) *Services {
	hub := chat.NewHub(repos, cache, journal)

	return &Services{
		Auth:    auth.NewAuthService(repos, cache),
		User:    user.NewUserService(repos),
		Room:    room.NewRoomService(repos, hub),
		Message: message.NewMessageService(repos, cache),
		Hub:     hub,
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.Room.CreateRoom() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository、Redis、事件归档初始化之后
func InitServices(repos *repository.Repositories, cache myredis.AsyncCacheService, journal mq.EventJournal) {
	Svc = NewServices(repos, cache, journal)
}
