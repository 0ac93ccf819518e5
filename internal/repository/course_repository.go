package repository

import (
	"errors"
	"strings"

	"github.com/aipath-api/internal/models"

	"gorm.io/gorm"
)

// CourseRepository 课程目录数据访问接口
type CourseRepository interface {
	GetByID(id string, onlyActive bool) (*models.Course, error)
	List(filter CourseListFilter) ([]models.Course, int64, error)
	Create(course *models.Course) error
	Update(course *models.Course) error
	Delete(id string) error
}

// GormCourseRepository GORM 实现
type GormCourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository 创建课程仓库
func NewCourseRepository(db *gorm.DB) *GormCourseRepository {
	return &GormCourseRepository{db: db}
}

// GetByID 按课程ID获取课程
func (r *GormCourseRepository) GetByID(id string, onlyActive bool) (*models.Course, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	query := r.db.Where("id = ?", id)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var course models.Course
	if err := query.First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

// List 课程列表
func (r *GormCourseRepository) List(filter CourseListFilter) ([]models.Course, int64, error) {
	var courses []models.Course

	query := r.db.Model(&models.Course{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if level := strings.TrimSpace(filter.Level); level != "" {
		query = query.Where("level = ?", level)
	}
	if roleID := strings.TrimSpace(filter.RoleID); roleID != "" {
		query = query.Where("role_id = ?", roleID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"id", "title", "description"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("sort_order DESC, created_at DESC").Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// Create 创建课程
func (r *GormCourseRepository) Create(course *models.Course) error {
	return r.db.Create(course).Error
}

// Update 更新课程
func (r *GormCourseRepository) Update(course *models.Course) error {
	return r.db.Save(course).Error
}

// Delete 删除课程（软删除）
func (r *GormCourseRepository) Delete(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return r.db.Where("id = ?", id).Delete(&models.Course{}).Error
}
