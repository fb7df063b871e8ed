// registry.go
// 连接注册表：维护 连接 -> 用户 与 房间 -> 连接集合 两个索引
// 只负责路由和扇出，不做任何业务检查（成员校验在 Hub 完成）
package chat

import (
	"sync"

	"go.uber.org/zap"
)

// Sink 单条连接的下行通道
// Deliver 非阻塞投递一帧，缓冲满时返回 false（慢消费者丢帧，连接本身不断开）
type Sink interface {
	Deliver(frame []byte) bool
}

// connEntry 一条已注册的连接
type connEntry struct {
	userUuid string
	sink     Sink
	rooms    map[string]struct{}
}

// ConnRegistry 连接注册表
// 同一用户可以有多条连接（多标签页/多设备），各自独立订阅房间
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[int64]*connEntry
	// rooms 反向索引：房间 -> 订阅该房间的连接集合
	rooms map[string]map[int64]*connEntry
}

// NewConnRegistry 创建连接注册表
func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		conns: make(map[int64]*connEntry),
		rooms: make(map[string]map[int64]*connEntry),
	}
}

// Register 注册连接，重复注册同一 connId 为幂等操作
func (r *ConnRegistry) Register(connId int64, userUuid string, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[connId]; ok {
		return
	}
	r.conns[connId] = &connEntry{
		userUuid: userUuid,
		sink:     sink,
		rooms:    make(map[string]struct{}),
	}
}

// Unregister 注销连接并退订其所有房间
// 返回连接所属的用户 UUID，连接不存在时返回空字符串
func (r *ConnRegistry) Unregister(connId int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[connId]
	if !ok {
		return ""
	}
	for roomUuid := range entry.rooms {
		r.removeFromRoom(roomUuid, connId)
	}
	delete(r.conns, connId)
	return entry.userUuid
}

// JoinRoom 让连接订阅房间的扇出，幂等
func (r *ConnRegistry) JoinRoom(connId int64, roomUuid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[connId]
	if !ok {
		return false
	}
	entry.rooms[roomUuid] = struct{}{}
	if r.rooms[roomUuid] == nil {
		r.rooms[roomUuid] = make(map[int64]*connEntry)
	}
	r.rooms[roomUuid][connId] = entry
	return true
}

// LeaveRoom 让连接退订房间，幂等
func (r *ConnRegistry) LeaveRoom(connId int64, roomUuid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[connId]
	if !ok {
		return false
	}
	if _, in := entry.rooms[roomUuid]; !in {
		return false
	}
	delete(entry.rooms, roomUuid)
	r.removeFromRoom(roomUuid, connId)
	return true
}

// removeFromRoom 反向索引清理，调用方必须持有写锁
func (r *ConnRegistry) removeFromRoom(roomUuid string, connId int64) {
	if set, ok := r.rooms[roomUuid]; ok {
		delete(set, connId)
		if len(set) == 0 {
			delete(r.rooms, roomUuid)
		}
	}
}

// InRoom 连接是否订阅了房间
func (r *ConnRegistry) InRoom(connId int64, roomUuid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[connId]
	if !ok {
		return false
	}
	_, in := entry.rooms[roomUuid]
	return in
}

// UserOf 查询连接所属的用户 UUID
func (r *ConnRegistry) UserOf(connId int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.conns[connId]; ok {
		return entry.userUuid
	}
	return ""
}

// ToRoom 向房间内所有订阅连接广播事件
// excludeConn 非零时跳过该连接（发送者自己不收 join/leave/typing 事件）
func (r *ConnRegistry) ToRoom(roomUuid string, event Event, excludeConn int64) {
	frame := event.Encode()
	if frame == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for connId, entry := range r.rooms[roomUuid] {
		if connId == excludeConn {
			continue
		}
		if !entry.sink.Deliver(frame) {
			zap.L().Warn("连接下行缓冲已满，丢弃事件",
				zap.Int64("connId", connId),
				zap.String("event", event.Event))
		}
	}
}

// ToConn 向单条连接发送事件（错误帧等点对点通知）
func (r *ConnRegistry) ToConn(connId int64, event Event) {
	frame := event.Encode()
	if frame == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.conns[connId]; ok {
		entry.sink.Deliver(frame)
	}
}

// ToAll 向所有在线连接广播事件（在线状态变化走这里）
func (r *ConnRegistry) ToAll(event Event) {
	frame := event.Encode()
	if frame == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for connId, entry := range r.conns {
		if !entry.sink.Deliver(frame) {
			zap.L().Warn("连接下行缓冲已满，丢弃事件",
				zap.Int64("connId", connId),
				zap.String("event", event.Event))
		}
	}
}

// KickUserFromRoom 强制退订某用户在该房间的所有连接
// 成员被移出房间后调用，返回被退订的连接数
func (r *ConnRegistry) KickUserFromRoom(roomUuid, userUuid string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kicked := 0
	for connId, entry := range r.rooms[roomUuid] {
		if entry.userUuid != userUuid {
			continue
		}
		delete(entry.rooms, roomUuid)
		r.removeFromRoom(roomUuid, connId)
		kicked++
	}
	return kicked
}

// DropRoom 强制退订房间的所有连接，房间解散后调用
func (r *ConnRegistry) DropRoom(roomUuid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for connId, entry := range r.rooms[roomUuid] {
		delete(entry.rooms, roomUuid)
		delete(r.rooms[roomUuid], connId)
	}
	delete(r.rooms, roomUuid)
}

// ConnCount 当前连接数
func (r *ConnRegistry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
