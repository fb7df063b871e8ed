// hub.go
// Hub 是实时聊天的业务核心：所有消息收发、进出房间、输入状态、
// 在线状态的规则都集中在这里，WebSocket 和 HTTP 两条入口共用同一套逻辑，
// 保证两条路径的授权检查和广播行为完全一致
package chat

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"relay_chat_server/internal/dao/mysql/repository"
	rediscache "relay_chat_server/internal/dao/redis"
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/dto/respond"
	"relay_chat_server/internal/infrastructure/mq"
	"relay_chat_server/internal/model"
	"relay_chat_server/internal/service/authz"
	"relay_chat_server/pkg/constants"
	"relay_chat_server/pkg/errorx"
	"relay_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// Hub 实时聊天中枢
type Hub struct {
	repos    *repository.Repositories
	gate     *authz.Gate
	registry *ConnRegistry
	presence *PresenceTracker
	cache    rediscache.AsyncCacheService // 可为 nil（测试环境）
	journal  mq.EventJournal

	// roomLocks 按房间加锁，保证同一房间内"先落库后广播"的顺序
	// 与数据库写入顺序一致；不同房间互不阻塞
	lockMu    sync.Mutex
	roomLocks map[string]*sync.Mutex
}

// NewHub 创建聊天中枢
func NewHub(repos *repository.Repositories, cache rediscache.AsyncCacheService, journal mq.EventJournal) *Hub {
	if journal == nil {
		journal = mq.NoopJournal{}
	}
	return &Hub{
		repos:     repos,
		gate:      authz.NewGate(repos.RoomMember),
		registry:  NewConnRegistry(),
		presence:  NewPresenceTracker(),
		cache:     cache,
		journal:   journal,
		roomLocks: make(map[string]*sync.Mutex),
	}
}

// Registry 暴露连接注册表（点对点错误帧等场景使用）
func (h *Hub) Registry() *ConnRegistry {
	return h.registry
}

// roomLock 取房间级互斥锁，懒创建
func (h *Hub) roomLock(roomUuid string) *sync.Mutex {
	h.lockMu.Lock()
	defer h.lockMu.Unlock()
	lock, ok := h.roomLocks[roomUuid]
	if !ok {
		lock = &sync.Mutex{}
		h.roomLocks[roomUuid] = lock
	}
	return lock
}

// usernameOf 查用户名，查不到返回空串（只用于事件负载展示）
func (h *Hub) usernameOf(userUuid string) string {
	user, err := h.repos.User.FindByUuid(userUuid)
	if err != nil {
		zap.L().Warn("查找用户名失败", zap.String("userUuid", userUuid), zap.Error(err))
		return ""
	}
	return user.Username
}

// invalidateRoomCache 异步失效房间历史消息缓存
func (h *Hub) invalidateRoomCache(roomUuid string) {
	if h.cache == nil {
		return
	}
	h.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pattern := fmt.Sprintf(constants.ROOM_MESSAGES_KEY_PATTERN, roomUuid)
		if err := h.cache.DeleteByPattern(ctx, pattern); err != nil {
			zap.L().Warn("房间消息缓存失效失败", zap.String("roomUuid", roomUuid), zap.Error(err))
		}
	})
}

// ==================== 连接生命周期 ====================

// Connect 连接建立后注册到中枢
// 只有该用户的第一条连接会翻转数据库在线标志并全局广播状态变化
func (h *Hub) Connect(connId int64, userUuid string, sink Sink) error {
	user, err := h.repos.User.FindByUuid(userUuid)
	if err != nil {
		return err
	}

	h.registry.Register(connId, userUuid, sink)

	if h.presence.Connect(userUuid) {
		now := time.Now()
		if err := h.repos.User.UpdatePresence(userUuid, true, now); err != nil {
			zap.L().Error("更新在线状态失败", zap.String("userUuid", userUuid), zap.Error(err))
		}
		h.registry.ToAll(Event{Event: EventUserStatus, Data: UserStatusEvent{
			UserId:     userUuid,
			Username:   user.Username,
			IsOnline:   true,
			LastSeenAt: &now,
		}})
		if h.cache != nil {
			h.cache.SubmitTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := h.cache.AddToSet(ctx, constants.ONLINE_USERS_KEY, userUuid); err != nil {
					zap.L().Warn("在线用户集合更新失败", zap.Error(err))
				}
			})
		}
		h.journal.Record("user_online", UserStatusEvent{UserId: userUuid, Username: user.Username, IsOnline: true})
	}
	return nil
}

// Disconnect 连接断开后注销
// 注销同时退订该连接的所有房间；最后一条连接断开时翻转离线状态并全局广播
func (h *Hub) Disconnect(connId int64) {
	userUuid := h.registry.Unregister(connId)
	if userUuid == "" {
		return
	}

	if h.presence.Disconnect(userUuid) {
		now := time.Now()
		if err := h.repos.User.UpdatePresence(userUuid, false, now); err != nil {
			zap.L().Error("更新离线状态失败", zap.String("userUuid", userUuid), zap.Error(err))
		}
		h.registry.ToAll(Event{Event: EventUserStatus, Data: UserStatusEvent{
			UserId:     userUuid,
			Username:   h.usernameOf(userUuid),
			IsOnline:   false,
			LastSeenAt: &now,
		}})
		if h.cache != nil {
			h.cache.SubmitTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := h.cache.RemoveFromSet(ctx, constants.ONLINE_USERS_KEY, userUuid); err != nil {
					zap.L().Warn("在线用户集合更新失败", zap.Error(err))
				}
			})
		}
		h.journal.Record("user_offline", UserStatusEvent{UserId: userUuid, IsOnline: false, LastSeenAt: &now})
	}
}

// ==================== 房间订阅 ====================

// JoinRoom 连接订阅房间的实时事件
// 成员检查先于一切：非成员得到 Forbidden，无论房间是否存在
func (h *Hub) JoinRoom(connId int64, userUuid, roomUuid string) error {
	if err := h.gate.RequireMember(roomUuid, userUuid); err != nil {
		return err
	}
	if !h.registry.JoinRoom(connId, roomUuid) {
		return errorx.New(errorx.CodeBadRequest, "连接未注册")
	}
	h.registry.ToRoom(roomUuid, Event{Event: EventUserJoinedRoom, Data: RoomEvent{
		RoomId:   roomUuid,
		UserId:   userUuid,
		Username: h.usernameOf(userUuid),
		At:       time.Now(),
	}}, connId)
	h.journal.Record("room_joined", RoomEvent{RoomId: roomUuid, UserId: userUuid, At: time.Now()})
	return nil
}

// LeaveRoom 连接退订房间的实时事件
func (h *Hub) LeaveRoom(connId int64, userUuid, roomUuid string) error {
	if !h.registry.LeaveRoom(connId, roomUuid) {
		return errorx.New(errorx.CodeBadRequest, "未订阅该房间")
	}
	h.registry.ToRoom(roomUuid, Event{Event: EventUserLeftRoom, Data: RoomEvent{
		RoomId:   roomUuid,
		UserId:   userUuid,
		Username: h.usernameOf(userUuid),
		At:       time.Now(),
	}}, connId)
	h.journal.Record("room_left", RoomEvent{RoomId: roomUuid, UserId: userUuid, At: time.Now()})
	return nil
}

// ==================== 消息 ====================

// SendMessage 发送消息：先持久化，成功后才向房间广播
// 房间级锁保证同一房间内广播顺序与落库顺序一致
func (h *Hub) SendMessage(senderUuid string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	if err := h.gate.RequireMember(req.RoomId, senderUuid); err != nil {
		return nil, err
	}
	sender, err := h.repos.User.FindByUuid(senderUuid)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		Uuid:           snowflake.GenerateID(),
		RoomUuid:       req.RoomId,
		SenderUuid:     senderUuid,
		Type:           req.Type,
		Content:        req.Content,
		AttachmentUrl:  req.AttachmentUrl,
		AttachmentName: req.AttachmentName,
	}

	lock := h.roomLock(req.RoomId)
	lock.Lock()
	defer lock.Unlock()

	if err := h.repos.Message.Create(message); err != nil {
		return nil, err
	}

	resp := toMessageRespond(message, sender.Username)
	h.registry.ToRoom(req.RoomId, Event{Event: EventReceiveMessage, Data: resp}, 0)
	h.invalidateRoomCache(req.RoomId)
	h.journal.Record("message_sent", resp)
	return &resp, nil
}

// EditMessage 编辑消息，仅限作者本人
func (h *Hub) EditMessage(editorUuid string, messageId int64, content string) (*respond.MessageRespond, error) {
	message, err := h.repos.Message.FindByUuid(messageId)
	if err != nil {
		return nil, err
	}
	if message.SenderUuid != editorUuid {
		return nil, errorx.New(errorx.CodeForbidden, "只能编辑自己的消息")
	}

	lock := h.roomLock(message.RoomUuid)
	lock.Lock()
	defer lock.Unlock()

	message.Content = content
	message.EditedAt = sql.NullTime{Time: time.Now(), Valid: true}
	if err := h.repos.Message.Update(message); err != nil {
		return nil, err
	}

	resp := toMessageRespond(message, h.usernameOf(message.SenderUuid))
	h.registry.ToRoom(message.RoomUuid, Event{Event: EventMessageEdited, Data: resp}, 0)
	h.invalidateRoomCache(message.RoomUuid)
	h.journal.Record("message_edited", resp)
	return &resp, nil
}

// DeleteMessage 删除消息，仅限作者本人；硬删除并级联清理表情回应
func (h *Hub) DeleteMessage(editorUuid string, messageId int64) error {
	message, err := h.repos.Message.FindByUuid(messageId)
	if err != nil {
		return err
	}
	if message.SenderUuid != editorUuid {
		return errorx.New(errorx.CodeForbidden, "只能删除自己的消息")
	}

	lock := h.roomLock(message.RoomUuid)
	lock.Lock()
	defer lock.Unlock()

	err = h.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Reaction.DeleteByMessageUuids([]int64{messageId}); err != nil {
			return err
		}
		return tx.Message.Delete(messageId)
	})
	if err != nil {
		return err
	}

	payload := MessageDeletedEvent{RoomId: message.RoomUuid, MessageId: messageId}
	h.registry.ToRoom(message.RoomUuid, Event{Event: EventMessageDeleted, Data: payload}, 0)
	h.invalidateRoomCache(message.RoomUuid)
	h.journal.Record("message_deleted", payload)
	return nil
}

// ==================== 输入状态 ====================

// StartTyping 广播开始输入，发送者自己不收
// 输入状态不落库，广播即完成
func (h *Hub) StartTyping(connId int64, userUuid, roomUuid string) error {
	return h.broadcastTyping(connId, userUuid, roomUuid, EventUserTypingStart)
}

// StopTyping 广播停止输入，发送者自己不收
func (h *Hub) StopTyping(connId int64, userUuid, roomUuid string) error {
	return h.broadcastTyping(connId, userUuid, roomUuid, EventUserTypingStop)
}

// broadcastTyping 按订阅关系分发，不查库
// 订阅本身已经过成员检查，这里只认连接是否在房间内
func (h *Hub) broadcastTyping(connId int64, userUuid, roomUuid, event string) error {
	if !h.registry.InRoom(connId, roomUuid) {
		return errorx.New(errorx.CodeForbidden, "您还未订阅该房间")
	}
	h.registry.ToRoom(roomUuid, Event{Event: event, Data: TypingEvent{
		RoomId:   roomUuid,
		UserId:   userUuid,
		Username: h.usernameOf(userUuid),
	}}, connId)
	return nil
}

// ==================== 表情回应 ====================

// AddReaction 给消息添加表情回应
// 同一用户对同一消息的同一表情只能回应一次
func (h *Hub) AddReaction(userUuid string, messageId int64, emoji string) error {
	message, err := h.repos.Message.FindByUuid(messageId)
	if err != nil {
		return err
	}
	if err := h.gate.RequireMember(message.RoomUuid, userUuid); err != nil {
		return err
	}

	existing, err := h.repos.Reaction.Find(messageId, userUuid, emoji)
	if err != nil && !errorx.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return errorx.New(errorx.CodeBadRequest, "已经回应过该表情")
	}

	reaction := &model.MessageReaction{
		MessageUuid: messageId,
		UserUuid:    userUuid,
		Emoji:       emoji,
	}
	if err := h.repos.Reaction.Create(reaction); err != nil {
		return err
	}

	payload := ReactionEvent{RoomId: message.RoomUuid, MessageId: messageId, UserId: userUuid, Emoji: emoji}
	h.registry.ToRoom(message.RoomUuid, Event{Event: EventReactionAdded, Data: payload}, 0)
	h.invalidateRoomCache(message.RoomUuid)
	h.journal.Record("reaction_added", payload)
	return nil
}

// RemoveReaction 移除自己的表情回应
func (h *Hub) RemoveReaction(userUuid string, messageId int64, emoji string) error {
	message, err := h.repos.Message.FindByUuid(messageId)
	if err != nil {
		return err
	}
	if err := h.gate.RequireMember(message.RoomUuid, userUuid); err != nil {
		return err
	}

	if _, err := h.repos.Reaction.Find(messageId, userUuid, emoji); err != nil {
		return err
	}
	if err := h.repos.Reaction.Delete(messageId, userUuid, emoji); err != nil {
		return err
	}

	payload := ReactionEvent{RoomId: message.RoomUuid, MessageId: messageId, UserId: userUuid, Emoji: emoji}
	h.registry.ToRoom(message.RoomUuid, Event{Event: EventReactionRemoved, Data: payload}, 0)
	h.invalidateRoomCache(message.RoomUuid)
	h.journal.Record("reaction_removed", payload)
	return nil
}

// ==================== 成员关系变化通知 ====================

// MemberRemoved 成员被移出房间后，先广播离开事件再退订其连接
// 实现 room.Notifier
func (h *Hub) MemberRemoved(roomUuid, userUuid string) {
	h.registry.ToRoom(roomUuid, Event{Event: EventUserLeftRoom, Data: RoomEvent{
		RoomId:   roomUuid,
		UserId:   userUuid,
		Username: h.usernameOf(userUuid),
		At:       time.Now(),
	}}, 0)
	h.registry.KickUserFromRoom(roomUuid, userUuid)
	h.journal.Record("room_left", RoomEvent{RoomId: roomUuid, UserId: userUuid, At: time.Now()})
}

// RoomDeleted 房间解散后，先广播解散事件再退订所有连接
// 实现 room.Notifier
func (h *Hub) RoomDeleted(roomUuid string) {
	payload := RoomDeletedEvent{RoomId: roomUuid}
	h.registry.ToRoom(roomUuid, Event{Event: EventRoomDeleted, Data: payload}, 0)
	h.registry.DropRoom(roomUuid)
	h.invalidateRoomCache(roomUuid)
	h.journal.Record("room_deleted", payload)
}

// toMessageRespond 模型转响应结构
func toMessageRespond(message *model.Message, senderName string) respond.MessageRespond {
	resp := respond.MessageRespond{
		MessageId:      message.Uuid,
		RoomId:         message.RoomUuid,
		SenderId:       message.SenderUuid,
		SenderName:     senderName,
		Type:           message.Type,
		Content:        message.Content,
		AttachmentUrl:  message.AttachmentUrl,
		AttachmentName: message.AttachmentName,
		CreatedAt:      message.CreatedAt,
	}
	if message.EditedAt.Valid {
		t := message.EditedAt.Time
		resp.EditedAt = &t
	}
	return resp
}
