package request

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	IsPrivate   bool   `json:"isPrivate"`
}

// UpdateRoomRequest 更新房间信息请求
type UpdateRoomRequest struct {
	RoomId      string `json:"roomId" binding:"required"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	IsPrivate   bool   `json:"isPrivate"`
}

// RoomIdRequest 仅携带房间 ID 的请求
type RoomIdRequest struct {
	RoomId string `json:"roomId" binding:"required"`
}

// RoomMemberRequest 添加/移除房间成员请求
// AsAdmin 仅添加成员时生效，移除成员时忽略
type RoomMemberRequest struct {
	RoomId  string `json:"roomId" binding:"required"`
	UserId  string `json:"userId" binding:"required"`
	AsAdmin bool   `json:"asAdmin"`
}
