// Package respond 定义所有 HTTP 接口的响应体结构
// 密码等敏感字段永远不出现在响应中
package respond

import "time"

// UserRespond 用户公开信息
type UserRespond struct {
	UserId     string     `json:"userId"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	IsOnline   bool       `json:"isOnline"`
	LastSeenAt *time.Time `json:"lastSeenAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// LoginRespond 登录/注册/刷新成功响应
type LoginRespond struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserRespond `json:"user"`
}
