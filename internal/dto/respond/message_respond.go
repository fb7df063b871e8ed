package respond

import "time"

// MessageRespond 消息信息
// MessageId 为雪花 ID，序列化成字符串避免 JS 端精度丢失
type MessageRespond struct {
	MessageId      int64             `json:"messageId,string"`
	RoomId         string            `json:"roomId"`
	SenderId       string            `json:"senderId"`
	SenderName     string            `json:"senderName"`
	Type           int8              `json:"type"`
	Content        string            `json:"content"`
	AttachmentUrl  string            `json:"attachmentUrl,omitempty"`
	AttachmentName string            `json:"attachmentName,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	EditedAt       *time.Time        `json:"editedAt"`
	Reactions      []ReactionRespond `json:"reactions,omitempty"`
}

// ReactionRespond 消息表情回应
type ReactionRespond struct {
	UserId string `json:"userId"`
	Emoji  string `json:"emoji"`
}

// MessagePageRespond 房间历史消息分页响应
type MessagePageRespond struct {
	Items      []MessageRespond `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalCount int64            `json:"totalCount"`
}
