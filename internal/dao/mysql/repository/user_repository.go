package repository

import (
	"time"

	"relay_chat_server/internal/model"

	"gorm.io/gorm"
)

// userRepository 用户数据访问实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUuid(uuid string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "查找用户失败 uuid=%s", uuid)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapDBError(err, "根据邮箱查找用户失败")
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapDBError(err, "根据用户名查找用户失败")
	}
	return &user, nil
}

func (r *userRepository) FindByUuids(uuids []string) ([]model.User, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.db.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查找用户失败")
	}
	return users, nil
}

func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("username ASC").Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "查找所有用户失败")
	}
	return users, nil
}

func (r *userRepository) Search(query string) ([]model.User, error) {
	var users []model.User
	pattern := "%" + query + "%"
	err := r.db.Where("username LIKE ? OR email LIKE ?", pattern, pattern).
		Order("username ASC").
		Limit(20).
		Find(&users).Error
	if err != nil {
		return nil, wrapDBError(err, "搜索用户失败")
	}
	return users, nil
}

func (r *userRepository) Create(user *model.User) error {
	return wrapDBError(r.db.Create(user).Error, "创建用户失败")
}

func (r *userRepository) Update(user *model.User) error {
	return wrapDBError(r.db.Save(user).Error, "更新用户失败")
}

func (r *userRepository) UpdatePresence(uuid string, isOnline bool, lastSeen time.Time) error {
	err := r.db.Model(&model.User{}).
		Where("uuid = ?", uuid).
		Updates(map[string]any{
			"is_online":    isOnline,
			"last_seen_at": lastSeen,
		}).Error
	return wrapDBErrorf(err, "更新用户在线状态失败 uuid=%s", uuid)
}

func (r *userRepository) IsUsernameTaken(username string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, wrapDBError(err, "检查用户名是否存在失败")
	}
	return count > 0, nil
}

func (r *userRepository) IsEmailTaken(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, wrapDBError(err, "检查邮箱是否存在失败")
	}
	return count > 0, nil
}
