package model

import "gorm.io/gorm"

// Room 聊天房间
type Room struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:房间唯一id"`
	Name        string `gorm:"column:name;type:varchar(100);not null;comment:房间名称"`
	Description string `gorm:"column:description;type:varchar(500);comment:房间描述"`
	IsPrivate   bool   `gorm:"column:is_private;not null;default:false;comment:是否私有"`
	CreatorUuid string `gorm:"column:creator_uuid;index;type:char(20);not null;comment:创建者uuid"`
}

func (Room) TableName() string {
	return "room"
}
