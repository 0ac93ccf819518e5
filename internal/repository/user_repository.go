package repository

import (
	"errors"
	"strings"

	"github.com/aipath-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户身份数据访问接口
type UserRepository interface {
	GetByID(id string) (*models.User, error)
	Upsert(user *models.User) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID 根据 uid 获取用户
func (r *GormUserRepository) GetByID(id string) (*models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Upsert 同步外部身份服务的用户资料
func (r *GormUserRepository) Upsert(user *models.User) error {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "status", "updated_at"}),
	}).Create(user).Error
}
