// Package user 提供用户查询相关的业务逻辑
package user

import (
	"strings"

	"relay_chat_server/internal/dao/mysql/repository"
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/dto/respond"
	"relay_chat_server/internal/service/auth"
	"relay_chat_server/pkg/errorx"
)

// Service 用户服务实现
type Service struct {
	repos *repository.Repositories
}

// NewUserService 创建用户服务实例
func NewUserService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// GetUserInfo 获取单个用户公开信息
func (s *Service) GetUserInfo(userUuid string) (*respond.UserRespond, error) {
	user, err := s.repos.User.FindByUuid(userUuid)
	if err != nil {
		return nil, err
	}
	resp := auth.ToUserRespond(user)
	return &resp, nil
}

// GetUserList 获取全部用户列表
func (s *Service) GetUserList() ([]respond.UserRespond, error) {
	users, err := s.repos.User.FindAll()
	if err != nil {
		return nil, err
	}
	list := make([]respond.UserRespond, 0, len(users))
	for i := range users {
		list = append(list, auth.ToUserRespond(&users[i]))
	}
	return list, nil
}

// UpdateProfile 修改当前用户的用户名/邮箱
// 两个字段均可选，但至少要改一项；新值不能与其他用户冲突
func (s *Service) UpdateProfile(userUuid string, req request.UpdateProfileRequest) (*respond.UserRespond, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" && email == "" {
		return nil, errorx.New(errorx.CodeBadRequest, "请至少填写一项需要修改的资料")
	}

	user, err := s.repos.User.FindByUuid(userUuid)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		if err := s.ensureUsernameFree(username, userUuid); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if email != "" && email != user.Email {
		if err := s.ensureEmailFree(email, userUuid); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if err := s.repos.User.Update(user); err != nil {
		return nil, err
	}
	resp := auth.ToUserRespond(user)
	return &resp, nil
}

func (s *Service) ensureUsernameFree(username, selfUuid string) error {
	other, err := s.repos.User.FindByUsername(username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil
		}
		return err
	}
	if other.Uuid != selfUuid {
		return errorx.New(errorx.CodeBadRequest, "用户名已被占用")
	}
	return nil
}

func (s *Service) ensureEmailFree(email, selfUuid string) error {
	other, err := s.repos.User.FindByEmail(email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil
		}
		return err
	}
	if other.Uuid != selfUuid {
		return errorx.New(errorx.CodeBadRequest, "邮箱已被占用")
	}
	return nil
}

// SearchUsers 按用户名或邮箱模糊搜索
// 关键词至少 2 个字符，避免全表扫描式的空泛查询
func (s *Service) SearchUsers(query string) ([]respond.UserRespond, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return nil, errorx.New(errorx.CodeBadRequest, "搜索关键词至少需要2个字符")
	}
	users, err := s.repos.User.Search(query)
	if err != nil {
		return nil, err
	}
	list := make([]respond.UserRespond, 0, len(users))
	for i := range users {
		list = append(list, auth.ToUserRespond(&users[i]))
	}
	return list, nil
}
