// Package auth 提供认证相关的业务逻辑
// 注册、登录、令牌刷新与登出
// Access Token 为无状态 JWT；Refresh Token 的 tokenID 存入 Redis，
// 轮换或登出后旧 Refresh Token 立即作废
package auth

import (
	"context"
	"fmt"
	"time"

	"relay_chat_server/internal/dao/mysql/repository"
	myredis "relay_chat_server/internal/dao/redis"
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/dto/respond"
	"relay_chat_server/internal/model"
	"relay_chat_server/pkg/constants"
	"relay_chat_server/pkg/errorx"
	"relay_chat_server/pkg/util/jwt"
	"relay_chat_server/pkg/util/random"

	"go.uber.org/zap"
)

// Service 认证服务实现
type Service struct {
	repos *repository.Repositories
	cache myredis.CacheService // 可为 nil（测试环境），nil 时跳过会话存储
}

// NewAuthService 创建认证服务实例
func NewAuthService(repos *repository.Repositories, cache myredis.CacheService) *Service {
	return &Service{
		repos: repos,
		cache: cache,
	}
}

// Register 用户注册
// 用户名和邮箱全局唯一；注册成功直接发放令牌，无需再登录一次
func (s *Service) Register(req request.RegisterRequest) (*respond.LoginRespond, error) {
	taken, err := s.repos.User.IsUsernameTaken(req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errorx.New(errorx.CodeBadRequest, "用户名已被占用")
	}
	taken, err = s.repos.User.IsEmailTaken(req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errorx.New(errorx.CodeBadRequest, "邮箱已被注册")
	}

	user := &model.User{
		Uuid:        "U" + random.GetNowAndLenRandomString(11),
		Username:    req.Username,
		Email:       req.Email,
		RawPassword: req.Password, // BeforeSave Hook 中加密
	}
	if err := s.repos.User.Create(user); err != nil {
		return nil, err
	}
	zap.L().Info("新用户注册", zap.String("uuid", user.Uuid), zap.String("username", user.Username))

	return s.issueTokens(user)
}

// Login 邮箱密码登录
// 邮箱不存在和密码错误返回同一个错误，不泄露账号是否存在
func (s *Service) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.repos.User.FindByEmail(req.Email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "邮箱或密码错误")
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeUnauthorized, "邮箱或密码错误")
	}

	return s.issueTokens(user)
}

// Refresh 刷新令牌
// 校验 Refresh Token 的 tokenID 与 Redis 中的会话一致后轮换，
// 旧 Refresh Token 随即作废
func (s *Service) Refresh(req request.RefreshTokenRequest) (*respond.LoginRespond, error) {
	claims, err := jwt.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "无效的刷新令牌")
	}
	if claims.Subject != "refresh_token" || claims.TokenID == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "无效的刷新令牌")
	}

	if s.cache != nil {
		key := fmt.Sprintf(constants.USER_TOKEN_KEY_FMT, claims.UserID)
		validTokenID, err := s.cache.Get(context.Background(), key)
		if err != nil {
			return nil, err
		}
		if validTokenID == "" || validTokenID != claims.TokenID {
			return nil, errorx.New(errorx.CodeUnauthorized, "刷新令牌已失效，请重新登录")
		}
	}

	user, err := s.repos.User.FindByUuid(claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

// Logout 登出，使当前会话的 Refresh Token 作废
func (s *Service) Logout(userUuid string) error {
	if s.cache == nil {
		return nil
	}
	key := fmt.Sprintf(constants.USER_TOKEN_KEY_FMT, userUuid)
	return s.cache.Delete(context.Background(), key)
}

// issueTokens 发放 Access/Refresh 令牌并写入会话
func (s *Service) issueTokens(user *model.User) (*respond.LoginRespond, error) {
	accessToken, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "生成访问令牌失败")
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "生成刷新令牌失败")
	}

	if s.cache != nil {
		key := fmt.Sprintf(constants.USER_TOKEN_KEY_FMT, user.Uuid)
		ttl := time.Duration(constants.REFRESH_TOKEN_EXPIRY_HOURS) * time.Hour
		if err := s.cache.Set(context.Background(), key, tokenID, ttl); err != nil {
			return nil, err
		}
	}

	return &respond.LoginRespond{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         ToUserRespond(user),
	}, nil
}

// ToUserRespond 模型转用户公开信息
func ToUserRespond(user *model.User) respond.UserRespond {
	resp := respond.UserRespond{
		UserId:    user.Uuid,
		Username:  user.Username,
		Email:     user.Email,
		IsOnline:  user.IsOnline,
		CreatedAt: user.CreatedAt,
	}
	if user.LastSeenAt.Valid {
		t := user.LastSeenAt.Time
		resp.LastSeenAt = &t
	}
	return resp
}
