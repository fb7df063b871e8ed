// Package model 定义数据库实体模型
// 实体之间只通过外键 uuid 关联，不持有对象引用，按需通过 Repository 查询
package model

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 用户信息模型
// 对应数据库 user 表
type User struct {
	gorm.Model

	// Uuid 用户唯一标识
	// 格式：U + 时间戳随机字符串，如 "U241230AbCdE1234567"
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户唯一id"`

	// Username 用户名，全局唯一
	Username string `gorm:"column:username;uniqueIndex;type:varchar(50);not null;comment:用户名"`

	// Email 邮箱地址，全局唯一，用于登录
	Email string `gorm:"column:email;uniqueIndex;type:varchar(100);not null;comment:邮箱"`

	// Password 密码（已哈希）
	// 存储 bcrypt 哈希后的密码，不存储明文
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码哈希"`

	// IsOnline 在线标志
	// 只在用户的第一条连接建立/最后一条连接断开时翻转
	IsOnline bool `gorm:"column:is_online;not null;default:false;comment:是否在线"`

	// LastSeenAt 最近一次在线时间
	LastSeenAt sql.NullTime `gorm:"column:last_seen_at;type:datetime;comment:最近在线时间"`

	// RawPassword 明文密码（不存入数据库）
	// 用于接收前端传来的明文密码，在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "user"
}

// BeforeSave GORM Hook：在创建和更新前自动调用
// 将 RawPassword 明文密码加密后存入 Password 字段
func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = "" // 清空明文，防止泄露
	}
	return nil
}

// CheckPassword 校验密码是否正确
func (u *User) CheckPassword(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext))
	return err == nil
}
