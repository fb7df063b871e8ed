// Package chat 实现聊天系统的实时核心
// events.go 定义服务端推送给前端的事件帧
// 所有事件统一封装为 {"event": 名称, "data": 负载} 的 JSON 帧
package chat

import (
	"encoding/json"
	"time"

	"relay_chat_server/internal/dto/respond"

	"go.uber.org/zap"
)

// 事件名称
const (
	EventReceiveMessage  = "ReceiveMessage"  // 新消息（发给全房间，含发送者）
	EventMessageEdited   = "MessageEdited"   // 消息被编辑（发给全房间，含操作者）
	EventMessageDeleted  = "MessageDeleted"  // 消息被删除（发给全房间，含操作者）
	EventUserJoinedRoom  = "UserJoinedRoom"  // 用户加入房间（发给房间内其他人）
	EventUserLeftRoom    = "UserLeftRoom"    // 用户离开房间（发给房间内其他人）
	EventUserTypingStart = "UserStartedTyping" // 开始输入（发给房间内其他人）
	EventUserTypingStop  = "UserStoppedTyping" // 停止输入（发给房间内其他人）
	EventUserStatus      = "UserStatusChanged" // 在线状态变化（全局广播）
	EventReactionAdded   = "MessageReactionAdded"
	EventReactionRemoved = "MessageReactionRemoved"
	EventRoomDeleted     = "RoomDeleted" // 房间被解散（发给全房间）
	EventError           = "Error" // 仅发给出错的那条连接
)

// Event 推送帧
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode 序列化为 JSON 帧
// 序列化失败说明负载结构有 bug，记录日志并返回 nil
func (e Event) Encode() []byte {
	raw, err := json.Marshal(e)
	if err != nil {
		zap.L().Error("事件序列化失败", zap.String("event", e.Event), zap.Error(err))
		return nil
	}
	return raw
}

// RoomEvent 加入/离开房间事件负载
type RoomEvent struct {
	RoomId   string    `json:"roomId"`
	UserId   string    `json:"userId"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

// TypingEvent 输入状态事件负载
type TypingEvent struct {
	RoomId   string `json:"roomId"`
	UserId   string `json:"userId"`
	Username string `json:"username"`
}

// UserStatusEvent 在线状态变化事件负载
type UserStatusEvent struct {
	UserId     string     `json:"userId"`
	Username   string     `json:"username"`
	IsOnline   bool       `json:"isOnline"`
	LastSeenAt *time.Time `json:"lastSeenAt"`
}

// RoomDeletedEvent 房间解散事件负载
type RoomDeletedEvent struct {
	RoomId string `json:"roomId"`
}

// MessageDeletedEvent 消息删除事件负载
type MessageDeletedEvent struct {
	RoomId    string `json:"roomId"`
	MessageId int64  `json:"messageId,string"`
}

// ReactionEvent 表情回应事件负载
type ReactionEvent struct {
	RoomId    string `json:"roomId"`
	MessageId int64  `json:"messageId,string"`
	UserId    string `json:"userId"`
	Emoji     string `json:"emoji"`
}

// ErrorEvent 错误事件负载，仅发给触发错误的连接
type ErrorEvent struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// 复用 respond 包的消息结构，保证 HTTP 和 WebSocket 两条路径的消息形状一致
type MessageEventData = respond.MessageRespond
