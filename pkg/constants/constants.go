package constants

const (
	CHANNEL_SIZE               = 100 // 每个连接的发送缓冲大小
	REDIS_TIMEOUT              = 10  // redis 缓存过期时间 (分钟)
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天
	MESSAGE_PAGE_SIZE          = 50  // 消息分页默认大小
	MESSAGE_PAGE_SIZE_MAX      = 100 // 消息分页上限
)

// Redis 键格式
const (
	// USER_TOKEN_KEY_FMT Refresh Token 会话键，参数为 tokenID
	USER_TOKEN_KEY_FMT = "user_token:%s"
	// ROOM_MESSAGES_KEY_FMT 房间历史消息分页缓存键，参数为 roomId、page、pageSize
	ROOM_MESSAGES_KEY_FMT = "room_messages:%s:p%d_s%d"
	// ROOM_MESSAGES_KEY_PATTERN 房间历史消息缓存失效模式，参数为 roomId
	ROOM_MESSAGES_KEY_PATTERN = "room_messages:%s:*"
	// ONLINE_USERS_KEY 在线用户集合键
	ONLINE_USERS_KEY = "online_users"
)
