// Package handler 提供 HTTP 请求处理器
// 本文件处理用户查询相关的 API 请求
package handler

import (
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetMe 获取当前登录用户信息
// GET /user/getMe
// 响应: respond.UserRespond
func (h *UserHandler) GetMe(c *gin.Context) {
	data, err := h.userSvc.GetUserInfo(currentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetUserInfo 获取指定用户公开信息
// GET /user/getUserInfo?userId=xxx
// 响应: respond.UserRespond
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	var req request.UserIdRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.GetUserInfo(req.UserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetUserList 获取全部用户列表
// GET /user/getUserList
// 响应: []respond.UserRespond
func (h *UserHandler) GetUserList(c *gin.Context) {
	data, err := h.userSvc.GetUserList()
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateProfile 修改当前登录用户的资料
// POST /user/updateProfile
// 请求体: request.UpdateProfileRequest
// 响应: respond.UserRespond
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.UpdateProfile(currentUserId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SearchUsers 搜索用户
// GET /user/searchUsers?query=xxx
// 响应: []respond.UserRespond
func (h *UserHandler) SearchUsers(c *gin.Context) {
	var req request.SearchUserRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.SearchUsers(req.Query)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
