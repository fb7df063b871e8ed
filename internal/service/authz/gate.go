// Package authz 提供房间级授权检查
// 成员表是唯一事实来源，Hub 和各 Service 共用同一套检查逻辑
package authz

import (
	"relay_chat_server/internal/dao/mysql/repository"
	"relay_chat_server/pkg/errorx"
)

// Gate 房间授权检查器
type Gate struct {
	members repository.RoomMemberRepository
}

// NewGate 创建授权检查器
func NewGate(members repository.RoomMemberRepository) *Gate {
	return &Gate{members: members}
}

// RequireMember 要求用户是房间成员，否则返回 CodeForbidden
// 成员检查先于房间存在性检查：非成员对不存在的房间同样得到 Forbidden，
// 避免通过错误码探测私有房间是否存在
func (g *Gate) RequireMember(roomUuid, userUuid string) error {
	ok, err := g.members.IsMember(roomUuid, userUuid)
	if err != nil {
		return err
	}
	if !ok {
		return errorx.New(errorx.CodeForbidden, "您不是该房间的成员")
	}
	return nil
}

// RequireAdmin 要求用户是房间管理员，否则返回 CodeForbidden
func (g *Gate) RequireAdmin(roomUuid, userUuid string) error {
	ok, err := g.members.IsAdmin(roomUuid, userUuid)
	if err != nil {
		return err
	}
	if !ok {
		return errorx.New(errorx.CodeForbidden, "该操作需要房间管理员权限")
	}
	return nil
}
