package request

// SearchUserRequest 搜索用户请求
type SearchUserRequest struct {
	Query string `form:"query" binding:"required,min=2,max=50"`
}

// UpdateProfileRequest 修改个人资料请求
// 两个字段均可选，业务层要求至少填写一项
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"omitempty,min=2,max=30"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// UserIdRequest 仅携带用户 ID 的请求
type UserIdRequest struct {
	UserId string `form:"userId" binding:"required"`
}
