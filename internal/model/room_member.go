package model

import (
	"time"

	"gorm.io/gorm"
)

// 房间成员角色，封闭枚举
const (
	RoleMember    int8 = 1 // 普通成员
	RoleModerator int8 = 2 // 协管
	RoleAdmin     int8 = 3 // 管理员
)

// RoomMember 房间成员关联表
// (room_uuid, user_uuid) 组合唯一：一个用户在一个房间最多一条成员记录
type RoomMember struct {
	gorm.Model
	RoomUuid string    `gorm:"column:room_uuid;uniqueIndex:idx_room_user;type:char(20);not null;comment:房间ID"`
	UserUuid string    `gorm:"column:user_uuid;uniqueIndex:idx_room_user;index;type:char(20);not null;comment:用户ID"`
	Role     int8      `gorm:"column:role;default:1;comment:1普通成员 2协管 3管理员"`
	JoinedAt time.Time `gorm:"column:joined_at;not null;comment:加入时间"`
}

func (RoomMember) TableName() string {
	return "room_member"
}
