package model

import "gorm.io/gorm"

// MessageReaction 消息表情回应
// (message_uuid, user_uuid, emoji) 三元组唯一
type MessageReaction struct {
	gorm.Model
	MessageUuid int64  `gorm:"column:message_uuid;uniqueIndex:idx_msg_user_emoji;index;type:bigint;not null;comment:消息ID"`
	UserUuid    string `gorm:"column:user_uuid;uniqueIndex:idx_msg_user_emoji;type:char(20);not null;comment:用户ID"`
	Emoji       string `gorm:"column:emoji;uniqueIndex:idx_msg_user_emoji;type:varchar(20);not null;comment:表情"`
}

func (MessageReaction) TableName() string {
	return "message_reaction"
}
