package respond

import "time"

// RoomRespond 房间信息
type RoomRespond struct {
	RoomId      string    `json:"roomId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatorId   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	MemberCount int64     `json:"memberCount"`
	// LastMessage 房间最新一条消息，空房间为 null
	LastMessage *MessageRespond `json:"lastMessage,omitempty"`
}

// RoomMemberRespond 房间成员信息
type RoomMemberRespond struct {
	UserId   string    `json:"userId"`
	Username string    `json:"username"`
	Role     int8      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
	IsOnline bool      `json:"isOnline"`
}
