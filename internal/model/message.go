package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// 消息类型
const (
	MessageTypeText int8 = 0 // 纯文本
	MessageTypeFile int8 = 1 // 带附件
)

// Message 消息模型
// 每条消息归属于唯一的房间和唯一的作者；内容只能通过编辑操作修改，
// 编辑同时写入 EditedAt；删除为硬删除并级联清理表情回应
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识，雪花算法生成的 int64
	// 在持久化之前由服务端分配，广播载荷携带此 id
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// RoomUuid 所属房间
	RoomUuid string `gorm:"column:room_uuid;index;type:char(20);not null;comment:房间uuid"`

	// SenderUuid 作者
	SenderUuid string `gorm:"column:sender_uuid;index;type:char(20);not null;comment:发送者uuid"`

	// Type 消息类型，0.文本 1.附件
	Type int8 `gorm:"column:type;not null;comment:消息类型，0.文本，1.附件"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// AttachmentUrl 附件链接（附件类消息使用）
	AttachmentUrl string `gorm:"column:attachment_url;type:varchar(255);comment:附件url"`

	// AttachmentName 附件文件名
	AttachmentName string `gorm:"column:attachment_name;type:varchar(100);comment:附件文件名"`

	// EditedAt 编辑时间，NULL 表示从未编辑
	EditedAt sql.NullTime `gorm:"column:edited_at;type:datetime;comment:编辑时间"`
}

func (Message) TableName() string {
	return "message"
}
