package repository

import (
	"relay_chat_server/internal/model"

	"gorm.io/gorm"
)

// reactionRepository 消息表情回应数据访问实现
type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository 创建表情回应 Repository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Find(messageUuid int64, userUuid, emoji string) (*model.MessageReaction, error) {
	var reaction model.MessageReaction
	err := r.db.Where("message_uuid = ? AND user_uuid = ? AND emoji = ?", messageUuid, userUuid, emoji).
		First(&reaction).Error
	if err != nil {
		return nil, wrapDBError(err, "查找消息回应失败")
	}
	return &reaction, nil
}

func (r *reactionRepository) FindByMessageUuids(messageUuids []int64) ([]model.MessageReaction, error) {
	if len(messageUuids) == 0 {
		return nil, nil
	}
	var reactions []model.MessageReaction
	err := r.db.Where("message_uuid IN ?", messageUuids).Find(&reactions).Error
	if err != nil {
		return nil, wrapDBError(err, "批量查找消息回应失败")
	}
	return reactions, nil
}

func (r *reactionRepository) Create(reaction *model.MessageReaction) error {
	return wrapDBError(r.db.Create(reaction).Error, "添加消息回应失败")
}

// Delete 物理删除回应记录
// 三元组有唯一索引，必须硬删，否则同一表情撤销后无法再次添加
func (r *reactionRepository) Delete(messageUuid int64, userUuid, emoji string) error {
	err := r.db.Unscoped().Where("message_uuid = ? AND user_uuid = ? AND emoji = ?", messageUuid, userUuid, emoji).
		Delete(&model.MessageReaction{}).Error
	return wrapDBError(err, "移除消息回应失败")
}

func (r *reactionRepository) DeleteByMessageUuids(messageUuids []int64) error {
	if len(messageUuids) == 0 {
		return nil
	}
	err := r.db.Unscoped().Where("message_uuid IN ?", messageUuids).Delete(&model.MessageReaction{}).Error
	return wrapDBError(err, "批量删除消息回应失败")
}
