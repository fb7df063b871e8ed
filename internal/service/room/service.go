// Package room 提供房间与成员管理的业务逻辑
// 创建/解散房间、成员增删、角色约束都在这里
// 约束全部在事务内检查，避免并发下出现无管理员的房间
package room

import (
	"time"

	"relay_chat_server/internal/dao/mysql/repository"
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/dto/respond"
	"relay_chat_server/internal/model"
	"relay_chat_server/internal/service/authz"
	"relay_chat_server/pkg/errorx"
	"relay_chat_server/pkg/util/random"

	"go.uber.org/zap"
)

// Notifier 成员关系变化时通知实时层
// 被移出房间的用户的所有连接要立刻退订该房间的事件流
type Notifier interface {
	// MemberRemoved 用户被移出房间（被管理员移除或自己退出）
	MemberRemoved(roomUuid, userUuid string)
	// RoomDeleted 房间被解散
	RoomDeleted(roomUuid string)
}

// Service 房间服务实现
type Service struct {
	repos    *repository.Repositories
	gate     *authz.Gate
	notifier Notifier // 可为 nil（测试环境）
}

// NewRoomService 创建房间服务实例
func NewRoomService(repos *repository.Repositories, notifier Notifier) *Service {
	return &Service{
		repos:    repos,
		gate:     authz.NewGate(repos.RoomMember),
		notifier: notifier,
	}
}

// CreateRoom 创建房间
// 房间和创建者的管理员成员记录在同一事务内原子创建，
// 不存在没有管理员的房间
func (s *Service) CreateRoom(creatorUuid string, req request.CreateRoomRequest) (*respond.RoomRespond, error) {
	room := &model.Room{
		Uuid:        "R" + random.GetNowAndLenRandomString(11),
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		CreatorUuid: creatorUuid,
	}

	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Room.Create(room); err != nil {
			return err
		}
		return tx.RoomMember.Create(&model.RoomMember{
			RoomUuid: room.Uuid,
			UserUuid: creatorUuid,
			Role:     model.RoleAdmin,
			JoinedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("房间已创建", zap.String("roomUuid", room.Uuid), zap.String("creator", creatorUuid))

	resp := s.toRoomRespond(room, 1, nil)
	return &resp, nil
}

// GetRoomInfo 获取房间详情
// 成员检查先于房间存在性检查，非成员无法探测私有房间是否存在
func (s *Service) GetRoomInfo(userUuid, roomUuid string) (*respond.RoomRespond, error) {
	if err := s.gate.RequireMember(roomUuid, userUuid); err != nil {
		return nil, err
	}
	room, err := s.repos.Room.FindByUuid(roomUuid)
	if err != nil {
		return nil, err
	}
	resp, err := s.enrichRoom(room)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetUserRooms 获取用户加入的所有房间
func (s *Service) GetUserRooms(userUuid string) ([]respond.RoomRespond, error) {
	rooms, err := s.repos.Room.FindByMember(userUuid)
	if err != nil {
		return nil, err
	}
	list := make([]respond.RoomRespond, 0, len(rooms))
	for i := range rooms {
		resp, err := s.enrichRoom(&rooms[i])
		if err != nil {
			return nil, err
		}
		list = append(list, *resp)
	}
	return list, nil
}

// GetPublicRooms 获取所有公开房间，任何登录用户可见
func (s *Service) GetPublicRooms() ([]respond.RoomRespond, error) {
	rooms, err := s.repos.Room.FindPublic()
	if err != nil {
		return nil, err
	}
	list := make([]respond.RoomRespond, 0, len(rooms))
	for i := range rooms {
		resp, err := s.enrichRoom(&rooms[i])
		if err != nil {
			return nil, err
		}
		list = append(list, *resp)
	}
	return list, nil
}

// UpdateRoom 更新房间信息，仅限管理员
func (s *Service) UpdateRoom(userUuid string, req request.UpdateRoomRequest) error {
	if err := s.gate.RequireAdmin(req.RoomId, userUuid); err != nil {
		return err
	}
	room, err := s.repos.Room.FindByUuid(req.RoomId)
	if err != nil {
		return err
	}
	room.Name = req.Name
	room.Description = req.Description
	room.IsPrivate = req.IsPrivate
	return s.repos.Room.Update(room)
}

// DeleteRoom 解散房间，仅限管理员
// 成员、消息、表情回应在同一事务内级联硬删除
func (s *Service) DeleteRoom(userUuid, roomUuid string) error {
	if err := s.gate.RequireAdmin(roomUuid, userUuid); err != nil {
		return err
	}

	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		messageUuids, err := tx.Message.FindUuidsByRoom(roomUuid)
		if err != nil {
			return err
		}
		if err := tx.Reaction.DeleteByMessageUuids(messageUuids); err != nil {
			return err
		}
		if err := tx.Message.DeleteByRoom(roomUuid); err != nil {
			return err
		}
		if err := tx.RoomMember.DeleteByRoom(roomUuid); err != nil {
			return err
		}
		return tx.Room.Delete(roomUuid)
	})
	if err != nil {
		return err
	}
	zap.L().Info("房间已解散", zap.String("roomUuid", roomUuid), zap.String("operator", userUuid))

	if s.notifier != nil {
		s.notifier.RoomDeleted(roomUuid)
	}
	return nil
}

// JoinRoom 自助加入公开房间
// 私有房间只能由管理员添加成员，自助加入返回 Forbidden
func (s *Service) JoinRoom(userUuid, roomUuid string) error {
	room, err := s.repos.Room.FindByUuid(roomUuid)
	if err != nil {
		return err
	}
	if room.IsPrivate {
		return errorx.New(errorx.CodeForbidden, "私有房间需要管理员邀请")
	}

	return s.repos.Transaction(func(tx *repository.Repositories) error {
		isMember, err := tx.RoomMember.IsMember(roomUuid, userUuid)
		if err != nil {
			return err
		}
		if isMember {
			return errorx.New(errorx.CodeBadRequest, "已经是房间成员")
		}
		return tx.RoomMember.Create(&model.RoomMember{
			RoomUuid: roomUuid,
			UserUuid: userUuid,
			Role:     model.RoleMember,
			JoinedAt: time.Now(),
		})
	})
}

// AddMember 添加成员，仅限管理员；重复添加返回 BadRequest
// asAdmin=true 时新成员直接获得管理员角色
func (s *Service) AddMember(actorUuid string, req request.RoomMemberRequest) error {
	if err := s.gate.RequireAdmin(req.RoomId, actorUuid); err != nil {
		return err
	}
	// 先确认目标用户存在
	if _, err := s.repos.User.FindByUuid(req.UserId); err != nil {
		return err
	}

	return s.repos.Transaction(func(tx *repository.Repositories) error {
		isMember, err := tx.RoomMember.IsMember(req.RoomId, req.UserId)
		if err != nil {
			return err
		}
		if isMember {
			return errorx.New(errorx.CodeBadRequest, "该用户已经是房间成员")
		}
		role := model.RoleMember
		if req.AsAdmin {
			role = model.RoleAdmin
		}
		return tx.RoomMember.Create(&model.RoomMember{
			RoomUuid: req.RoomId,
			UserUuid: req.UserId,
			Role:     role,
			JoinedAt: time.Now(),
		})
	})
}

// RemoveMember 移除成员；移除自己始终允许，移除他人仅限管理员
// 唯一管理员不能被移除，否则房间将失去管理员
func (s *Service) RemoveMember(actorUuid string, req request.RoomMemberRequest) error {
	// 移除自己无需管理员权限，移除他人才需要
	if req.UserId != actorUuid {
		if err := s.gate.RequireAdmin(req.RoomId, actorUuid); err != nil {
			return err
		}
	}

	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		return removeMemberInTx(tx, req.RoomId, req.UserId)
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.MemberRemoved(req.RoomId, req.UserId)
	}
	return nil
}

// LeaveRoom 自己退出房间
// 唯一管理员不能退出，须先解散房间或把管理员移交给他人
func (s *Service) LeaveRoom(userUuid, roomUuid string) error {
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		return removeMemberInTx(tx, roomUuid, userUuid)
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.MemberRemoved(roomUuid, userUuid)
	}
	return nil
}

// removeMemberInTx 删除一条成员记录，附带唯一管理员约束检查
// 必须在事务内调用，保证检查和删除之间不被并发修改穿插
func removeMemberInTx(tx *repository.Repositories, roomUuid, userUuid string) error {
	member, err := tx.RoomMember.Find(roomUuid, userUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "该用户不是房间成员")
		}
		return err
	}
	if member.Role == model.RoleAdmin {
		adminCount, err := tx.RoomMember.CountAdmins(roomUuid)
		if err != nil {
			return err
		}
		if adminCount <= 1 {
			return errorx.New(errorx.CodeBadRequest, "房间至少需要一名管理员")
		}
	}
	return tx.RoomMember.Delete(roomUuid, userUuid)
}

// GetRoomMembers 获取房间成员列表，仅限成员
func (s *Service) GetRoomMembers(userUuid, roomUuid string) ([]respond.RoomMemberRespond, error) {
	if err := s.gate.RequireMember(roomUuid, userUuid); err != nil {
		return nil, err
	}
	rows, err := s.repos.RoomMember.FindMembersWithUser(roomUuid)
	if err != nil {
		return nil, err
	}
	list := make([]respond.RoomMemberRespond, 0, len(rows))
	for _, row := range rows {
		list = append(list, respond.RoomMemberRespond{
			UserId:   row.UserUuid,
			Username: row.Username,
			Role:     row.Role,
			JoinedAt: row.JoinedAt,
			IsOnline: row.IsOnline,
		})
	}
	return list, nil
}

// enrichRoom 补充成员数和最新一条消息
func (s *Service) enrichRoom(room *model.Room) (*respond.RoomRespond, error) {
	memberCount, err := s.repos.RoomMember.CountMembers(room.Uuid)
	if err != nil {
		return nil, err
	}
	last, err := s.repos.Message.LastInRoom(room.Uuid)
	if err != nil {
		return nil, err
	}

	var lastResp *respond.MessageRespond
	if last != nil {
		senderName := ""
		if sender, err := s.repos.User.FindByUuid(last.SenderUuid); err == nil {
			senderName = sender.Username
		}
		r := respond.MessageRespond{
			MessageId:  last.Uuid,
			RoomId:     last.RoomUuid,
			SenderId:   last.SenderUuid,
			SenderName: senderName,
			Type:       last.Type,
			Content:    last.Content,
			CreatedAt:  last.CreatedAt,
		}
		if last.EditedAt.Valid {
			t := last.EditedAt.Time
			r.EditedAt = &t
		}
		lastResp = &r
	}

	resp := s.toRoomRespond(room, memberCount, lastResp)
	return &resp, nil
}

func (s *Service) toRoomRespond(room *model.Room, memberCount int64, last *respond.MessageRespond) respond.RoomRespond {
	return respond.RoomRespond{
		RoomId:      room.Uuid,
		Name:        room.Name,
		Description: room.Description,
		IsPrivate:   room.IsPrivate,
		CreatorId:   room.CreatorUuid,
		CreatedAt:   room.CreatedAt,
		MemberCount: memberCount,
		LastMessage: last,
	}
}
