// presence.go
// 在线状态引用计数：同一用户多条连接只在第一条建立/最后一条断开时翻转状态
package chat

import "sync"

// PresenceTracker 按用户统计活跃连接数
type PresenceTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewPresenceTracker 创建在线状态计数器
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{counts: make(map[string]int)}
}

// Connect 记录一条新连接，返回是否是该用户的第一条连接（离线 -> 在线）
func (p *PresenceTracker) Connect(userUuid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[userUuid]++
	return p.counts[userUuid] == 1
}

// Disconnect 记录一条连接断开，返回是否是该用户的最后一条连接（在线 -> 离线）
func (p *PresenceTracker) Disconnect(userUuid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.counts[userUuid]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(p.counts, userUuid)
		return true
	}
	p.counts[userUuid] = n - 1
	return false
}

// IsOnline 用户当前是否有活跃连接
func (p *PresenceTracker) IsOnline(userUuid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[userUuid] > 0
}

// OnlineCount 当前在线用户数
func (p *PresenceTracker) OnlineCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.counts)
}
