package request

// SendMessageRequest 发送消息请求（HTTP 入口）
type SendMessageRequest struct {
	RoomId         string `json:"roomId" binding:"required"`
	Content        string `json:"content" binding:"required,max=4000"`
	Type           int8   `json:"type" binding:"min=0,max=1"`
	AttachmentUrl  string `json:"attachmentUrl" binding:"max=500"`
	AttachmentName string `json:"attachmentName" binding:"max=200"`
}

// EditMessageRequest 编辑消息请求
type EditMessageRequest struct {
	MessageId int64  `json:"messageId,string" binding:"required"`
	Content   string `json:"content" binding:"required,max=4000"`
}

// DeleteMessageRequest 删除消息请求
type DeleteMessageRequest struct {
	MessageId int64 `json:"messageId,string" binding:"required"`
}

// MessagePageRequest 分页查询房间历史消息请求
type MessagePageRequest struct {
	RoomId   string `form:"roomId" binding:"required"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// ReactionRequest 添加/移除消息表情回应请求
type ReactionRequest struct {
	MessageId int64  `json:"messageId,string" binding:"required"`
	Emoji     string `json:"emoji" binding:"required,max=16"`
}
