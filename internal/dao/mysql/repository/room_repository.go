package repository

import (
	"relay_chat_server/internal/model"

	"gorm.io/gorm"
)

// roomRepository 房间数据访问实现
type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房间 Repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) FindByUuid(uuid string) (*model.Room, error) {
	var room model.Room
	if err := r.db.Where("uuid = ?", uuid).First(&room).Error; err != nil {
		return nil, wrapDBErrorf(err, "查找房间失败 uuid=%s", uuid)
	}
	return &room, nil
}

func (r *roomRepository) FindByMember(userUuid string) ([]model.Room, error) {
	var rooms []model.Room
	err := r.db.
		Joins("JOIN room_member ON room_member.room_uuid = room.uuid").
		Where("room_member.user_uuid = ?", userUuid).
		Order("room.created_at ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, wrapDBError(err, "查找用户的房间列表失败")
	}
	return rooms, nil
}

func (r *roomRepository) FindPublic() ([]model.Room, error) {
	var rooms []model.Room
	if err := r.db.Where("is_private = ?", false).Order("created_at ASC").Find(&rooms).Error; err != nil {
		return nil, wrapDBError(err, "查找公开房间列表失败")
	}
	return rooms, nil
}

func (r *roomRepository) Exists(uuid string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Room{}).Where("uuid = ?", uuid).Count(&count).Error; err != nil {
		return false, wrapDBError(err, "检查房间是否存在失败")
	}
	return count > 0, nil
}

func (r *roomRepository) Create(room *model.Room) error {
	return wrapDBError(r.db.Create(room).Error, "创建房间失败")
}

func (r *roomRepository) Update(room *model.Room) error {
	return wrapDBError(r.db.Save(room).Error, "更新房间失败")
}

// Delete 物理删除房间
// uuid 有唯一索引，硬删避免墓碑行占用索引
func (r *roomRepository) Delete(uuid string) error {
	err := r.db.Unscoped().Where("uuid = ?", uuid).Delete(&model.Room{}).Error
	return wrapDBErrorf(err, "删除房间失败 uuid=%s", uuid)
}
