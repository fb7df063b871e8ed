// Package router 提供 HTTP 路由注册
// 本文件定义用户相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.GET("/getMe", rt.handlers.User.GetMe)             // 当前登录用户信息
		userGroup.GET("/getUserInfo", rt.handlers.User.GetUserInfo) // 指定用户公开信息
		userGroup.GET("/getUserList", rt.handlers.User.GetUserList) // 全部用户列表
		userGroup.GET("/searchUsers", rt.handlers.User.SearchUsers)       // 搜索用户
		userGroup.POST("/updateProfile", rt.handlers.User.UpdateProfile) // 修改个人资料
	}
}
