package repository

import (
	"errors"

	"relay_chat_server/internal/model"

	"gorm.io/gorm"
)

// messageRepository 消息数据访问实现
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("uuid = ?", uuid).First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "查找消息失败 uuid=%d", uuid)
	}
	return &message, nil
}

// FindPageByRoom 按时间倒序分页查询房间消息，同时返回总条数
// 时间相同时按雪花 ID 倒序保证稳定排序
func (r *messageRepository) FindPageByRoom(roomUuid string, page, pageSize int) ([]model.Message, int64, error) {
	var total int64
	err := r.db.Model(&model.Message{}).Where("room_uuid = ?", roomUuid).Count(&total).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "统计房间消息数失败")
	}

	var messages []model.Message
	err = r.db.Where("room_uuid = ?", roomUuid).
		Order("created_at DESC, uuid DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "分页查询房间消息失败")
	}
	return messages, total, nil
}

func (r *messageRepository) FindUuidsByRoom(roomUuid string) ([]int64, error) {
	var uuids []int64
	err := r.db.Model(&model.Message{}).
		Where("room_uuid = ?", roomUuid).
		Pluck("uuid", &uuids).Error
	if err != nil {
		return nil, wrapDBError(err, "查找房间消息 ID 列表失败")
	}
	return uuids, nil
}

func (r *messageRepository) LastInRoom(roomUuid string) (*model.Message, error) {
	var message model.Message
	err := r.db.Where("room_uuid = ?", roomUuid).
		Order("created_at DESC, uuid DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBError(err, "查找房间最新消息失败")
	}
	return &message, nil
}

func (r *messageRepository) CountByRoom(roomUuid string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).Where("room_uuid = ?", roomUuid).Count(&count).Error
	if err != nil {
		return 0, wrapDBError(err, "统计房间消息数失败")
	}
	return count, nil
}

func (r *messageRepository) Create(message *model.Message) error {
	return wrapDBError(r.db.Create(message).Error, "创建消息失败")
}

func (r *messageRepository) Update(message *model.Message) error {
	return wrapDBError(r.db.Save(message).Error, "更新消息失败")
}

// Delete 物理删除消息，不留软删墓碑
func (r *messageRepository) Delete(uuid int64) error {
	err := r.db.Unscoped().Where("uuid = ?", uuid).Delete(&model.Message{}).Error
	return wrapDBErrorf(err, "删除消息失败 uuid=%d", uuid)
}

func (r *messageRepository) DeleteByRoom(roomUuid string) error {
	err := r.db.Unscoped().Where("room_uuid = ?", roomUuid).Delete(&model.Message{}).Error
	return wrapDBErrorf(err, "删除房间全部消息失败 room=%s", roomUuid)
}
