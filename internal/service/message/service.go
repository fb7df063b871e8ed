// Package message 提供历史消息查询的业务逻辑
// 消息的发送/编辑/删除走实时层 Hub，这里只负责分页读取
package message

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"relay_chat_server/internal/dao/mysql/repository"
	myredis "relay_chat_server/internal/dao/redis"
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/dto/respond"
	"relay_chat_server/internal/model"
	"relay_chat_server/internal/service/authz"
	"relay_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// Service 消息服务实现
type Service struct {
	repos *repository.Repositories
	gate  *authz.Gate
	cache myredis.AsyncCacheService // 可为 nil（测试环境），nil 时直查数据库
}

// NewMessageService 创建消息服务实例
func NewMessageService(repos *repository.Repositories, cache myredis.AsyncCacheService) *Service {
	return &Service{
		repos: repos,
		gate:  authz.NewGate(repos.RoomMember),
		cache: cache,
	}
}

// GetRoomMessages 分页获取房间历史消息，按时间倒序（最新的在前）
// 页码越界参数静默修正：page < 1 取 1，pageSize 超出 [1,100] 取默认 50
// 结果短暂缓存，消息发送/编辑/删除时由 Hub 异步失效
func (s *Service) GetRoomMessages(userUuid string, req request.MessagePageRequest) (*respond.MessagePageRespond, error) {
	if err := s.gate.RequireMember(req.RoomId, userUuid); err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > constants.MESSAGE_PAGE_SIZE_MAX {
		pageSize = constants.MESSAGE_PAGE_SIZE
	}

	cacheKey := fmt.Sprintf(constants.ROOM_MESSAGES_KEY_FMT, req.RoomId, page, pageSize)
	if s.cache != nil {
		if cached, err := s.cache.Get(context.Background(), cacheKey); err == nil && cached != "" {
			var resp respond.MessagePageRespond
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			zap.L().Warn("消息缓存解析失败，回退数据库", zap.String("key", cacheKey))
		}
	}

	messages, total, err := s.repos.Message.FindPageByRoom(req.RoomId, page, pageSize)
	if err != nil {
		return nil, err
	}

	items, err := s.buildRespondList(messages)
	if err != nil {
		return nil, err
	}

	resp := &respond.MessagePageRespond{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	if s.cache != nil {
		raw, err := json.Marshal(resp)
		if err == nil {
			s.cache.SubmitTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				ttl := time.Duration(constants.REDIS_TIMEOUT) * time.Minute
				if err := s.cache.Set(ctx, cacheKey, string(raw), ttl); err != nil {
					zap.L().Warn("消息缓存写入失败", zap.String("key", cacheKey), zap.Error(err))
				}
			})
		}
	}
	return resp, nil
}

// buildRespondList 批量补充发送者名称和表情回应，避免逐条查询
func (s *Service) buildRespondList(messages []model.Message) ([]respond.MessageRespond, error) {
	if len(messages) == 0 {
		return []respond.MessageRespond{}, nil
	}

	senderSet := make(map[string]struct{}, len(messages))
	messageUuids := make([]int64, 0, len(messages))
	for i := range messages {
		senderSet[messages[i].SenderUuid] = struct{}{}
		messageUuids = append(messageUuids, messages[i].Uuid)
	}
	senderUuids := make([]string, 0, len(senderSet))
	for uuid := range senderSet {
		senderUuids = append(senderUuids, uuid)
	}

	senders, err := s.repos.User.FindByUuids(senderUuids)
	if err != nil {
		return nil, err
	}
	nameByUuid := make(map[string]string, len(senders))
	for i := range senders {
		nameByUuid[senders[i].Uuid] = senders[i].Username
	}

	reactions, err := s.repos.Reaction.FindByMessageUuids(messageUuids)
	if err != nil {
		return nil, err
	}
	reactionsByMessage := make(map[int64][]respond.ReactionRespond)
	for _, reaction := range reactions {
		reactionsByMessage[reaction.MessageUuid] = append(reactionsByMessage[reaction.MessageUuid],
			respond.ReactionRespond{UserId: reaction.UserUuid, Emoji: reaction.Emoji})
	}

	items := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		item := respond.MessageRespond{
			MessageId:      msg.Uuid,
			RoomId:         msg.RoomUuid,
			SenderId:       msg.SenderUuid,
			SenderName:     nameByUuid[msg.SenderUuid],
			Type:           msg.Type,
			Content:        msg.Content,
			AttachmentUrl:  msg.AttachmentUrl,
			AttachmentName: msg.AttachmentName,
			CreatedAt:      msg.CreatedAt,
			Reactions:      reactionsByMessage[msg.Uuid],
		}
		if msg.EditedAt.Valid {
			t := msg.EditedAt.Time
			item.EditedAt = &t
		}
		items = append(items, item)
	}
	return items, nil
}
