package repository

import (
	"relay_chat_server/internal/model"

	"gorm.io/gorm"
)

// roomMemberRepository 房间成员数据访问实现
type roomMemberRepository struct {
	db *gorm.DB
}

// NewRoomMemberRepository 创建房间成员 Repository
func NewRoomMemberRepository(db *gorm.DB) RoomMemberRepository {
	return &roomMemberRepository{db: db}
}

func (r *roomMemberRepository) Find(roomUuid, userUuid string) (*model.RoomMember, error) {
	var member model.RoomMember
	err := r.db.Where("room_uuid = ? AND user_uuid = ?", roomUuid, userUuid).First(&member).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查找成员记录失败 room=%s user=%s", roomUuid, userUuid)
	}
	return &member, nil
}

func (r *roomMemberRepository) FindByRoom(roomUuid string) ([]model.RoomMember, error) {
	var members []model.RoomMember
	if err := r.db.Where("room_uuid = ?", roomUuid).Find(&members).Error; err != nil {
		return nil, wrapDBError(err, "查找房间成员列表失败")
	}
	return members, nil
}

func (r *roomMemberRepository) FindMembersWithUser(roomUuid string) ([]RoomMemberWithUser, error) {
	var rows []RoomMemberWithUser
	err := r.db.Model(&model.RoomMember{}).
		Select("room_member.user_uuid, user.username, room_member.role, room_member.joined_at, user.is_online").
		Joins("JOIN user ON user.uuid = room_member.user_uuid").
		Where("room_member.room_uuid = ?", roomUuid).
		Order("room_member.joined_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "查找房间成员详情失败")
	}
	return rows, nil
}

func (r *roomMemberRepository) IsMember(roomUuid, userUuid string) (bool, error) {
	var count int64
	err := r.db.Model(&model.RoomMember{}).
		Where("room_uuid = ? AND user_uuid = ?", roomUuid, userUuid).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "检查成员身份失败")
	}
	return count > 0, nil
}

func (r *roomMemberRepository) IsAdmin(roomUuid, userUuid string) (bool, error) {
	var count int64
	err := r.db.Model(&model.RoomMember{}).
		Where("room_uuid = ? AND user_uuid = ? AND role = ?", roomUuid, userUuid, model.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "检查管理员身份失败")
	}
	return count > 0, nil
}

func (r *roomMemberRepository) CountMembers(roomUuid string) (int64, error) {
	var count int64
	err := r.db.Model(&model.RoomMember{}).Where("room_uuid = ?", roomUuid).Count(&count).Error
	if err != nil {
		return 0, wrapDBError(err, "统计房间成员数失败")
	}
	return count, nil
}

func (r *roomMemberRepository) CountAdmins(roomUuid string) (int64, error) {
	var count int64
	err := r.db.Model(&model.RoomMember{}).
		Where("room_uuid = ? AND role = ?", roomUuid, model.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return 0, wrapDBError(err, "统计房间管理员数失败")
	}
	return count, nil
}

func (r *roomMemberRepository) Create(member *model.RoomMember) error {
	return wrapDBError(r.db.Create(member).Error, "添加房间成员失败")
}

// Delete 物理删除成员记录
// (room_uuid, user_uuid) 有唯一索引，必须硬删，否则被移除的成员无法重新加入
func (r *roomMemberRepository) Delete(roomUuid, userUuid string) error {
	err := r.db.Unscoped().Where("room_uuid = ? AND user_uuid = ?", roomUuid, userUuid).
		Delete(&model.RoomMember{}).Error
	return wrapDBErrorf(err, "移除房间成员失败 room=%s user=%s", roomUuid, userUuid)
}

func (r *roomMemberRepository) DeleteByRoom(roomUuid string) error {
	err := r.db.Unscoped().Where("room_uuid = ?", roomUuid).Delete(&model.RoomMember{}).Error
	return wrapDBErrorf(err, "删除房间全部成员失败 room=%s", roomUuid)
}
