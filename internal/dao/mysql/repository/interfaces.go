// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"errors"
	"time"

	"relay_chat_server/internal/model"
	"relay_chat_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// ErrRecordNotFound -> CodeNotFound，其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.User, error)
	// FindByEmail 根据邮箱查找用户
	FindByEmail(email string) (*model.User, error)
	// FindByUsername 根据用户名查找用户
	FindByUsername(username string) (*model.User, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.User, error)
	// FindAll 查找所有用户
	FindAll() ([]model.User, error)
	// Search 按用户名/邮箱模糊查找
	Search(query string) ([]model.User, error)
	// Create 创建新用户
	Create(user *model.User) error
	// Update 更新用户信息
	Update(user *model.User) error
	// UpdatePresence 更新在线状态和最近在线时间
	UpdatePresence(uuid string, isOnline bool, lastSeen time.Time) error
	// IsUsernameTaken 用户名是否已被占用
	IsUsernameTaken(username string) (bool, error)
	// IsEmailTaken 邮箱是否已被占用
	IsEmailTaken(email string) (bool, error)
}

// RoomRepository 房间数据访问接口
type RoomRepository interface {
	// FindByUuid 根据 UUID 查找房间
	FindByUuid(uuid string) (*model.Room, error)
	// FindByMember 查找用户作为成员的所有房间
	FindByMember(userUuid string) ([]model.Room, error)
	// FindPublic 查找所有公开房间
	FindPublic() ([]model.Room, error)
	// Exists 房间是否存在
	Exists(uuid string) (bool, error)
	// Create 创建新房间
	Create(room *model.Room) error
	// Update 更新房间信息
	Update(room *model.Room) error
	// Delete 硬删除房间（成员/消息级联由 Service 在事务中处理）
	Delete(uuid string) error
}

// RoomMemberRepository 房间成员数据访问接口
// 成员关系是授权检查的事实来源
type RoomMemberRepository interface {
	// Find 查找单条成员记录
	Find(roomUuid, userUuid string) (*model.RoomMember, error)
	// FindByRoom 查找房间的所有成员
	FindByRoom(roomUuid string) ([]model.RoomMember, error)
	// FindMembersWithUser 查找房间成员（关联用户资料）
	FindMembersWithUser(roomUuid string) ([]RoomMemberWithUser, error)
	// IsMember 用户是否是房间成员
	IsMember(roomUuid, userUuid string) (bool, error)
	// IsAdmin 用户是否是房间管理员
	IsAdmin(roomUuid, userUuid string) (bool, error)
	// CountMembers 房间成员数
	CountMembers(roomUuid string) (int64, error)
	// CountAdmins 房间管理员数（最后管理员不变量依赖此计数）
	CountAdmins(roomUuid string) (int64, error)
	// Create 添加成员
	Create(member *model.RoomMember) error
	// Delete 移除单个成员
	Delete(roomUuid, userUuid string) error
	// DeleteByRoom 硬删除房间的所有成员
	DeleteByRoom(roomUuid string) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// FindByUuid 根据雪花 ID 查找消息
	FindByUuid(uuid int64) (*model.Message, error)
	// FindPageByRoom 按房间分页查询（newest-first），返回消息列表和总条数
	FindPageByRoom(roomUuid string, page, pageSize int) ([]model.Message, int64, error)
	// FindUuidsByRoom 查找房间内所有消息的雪花 ID（级联删除用）
	FindUuidsByRoom(roomUuid string) ([]int64, error)
	// LastInRoom 查找房间内最新一条消息，房间为空时返回 (nil, nil)
	LastInRoom(roomUuid string) (*model.Message, error)
	// CountByRoom 房间消息总数
	CountByRoom(roomUuid string) (int64, error)
	// Create 创建消息
	Create(message *model.Message) error
	// Update 更新消息（编辑）
	Update(message *model.Message) error
	// Delete 硬删除单条消息
	Delete(uuid int64) error
	// DeleteByRoom 硬删除房间的所有消息
	DeleteByRoom(roomUuid string) error
}

// ReactionRepository 消息表情回应数据访问接口
type ReactionRepository interface {
	// Find 查找单条回应
	Find(messageUuid int64, userUuid, emoji string) (*model.MessageReaction, error)
	// FindByMessageUuids 批量查找多条消息的回应
	FindByMessageUuids(messageUuids []int64) ([]model.MessageReaction, error)
	// Create 添加回应
	Create(reaction *model.MessageReaction) error
	// Delete 移除回应
	Delete(messageUuid int64, userUuid, emoji string) error
	// DeleteByMessageUuids 硬删除多条消息的所有回应（消息删除级联）
	DeleteByMessageUuids(messageUuids []int64) error
}

// ==================== 复合结构 ====================

// RoomMemberWithUser 房间成员详细信息（含用户资料）
type RoomMemberWithUser struct {
	UserUuid string    `json:"userId"`
	Username string    `json:"username"`
	Role     int8      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
	IsOnline bool      `json:"isOnline"`
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db         *gorm.DB
	User       UserRepository
	Room       RoomRepository
	RoomMember RoomMemberRepository
	Message    MessageRepository
	Reaction   ReactionRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:         db,
		User:       NewUserRepository(db),
		Room:       NewRoomRepository(db),
		RoomMember: NewRoomMemberRepository(db),
		Message:    NewMessageRepository(db),
		Reaction:   NewReactionRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// 房间+创建者成员的原子创建、最后管理员检查等 check-then-write 逻辑都必须走这里
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
