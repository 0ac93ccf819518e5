package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aipath-api/internal/cache"
	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/repository"

	"github.com/shopspring/decimal"
)

var courseIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CourseService 课程目录服务
type CourseService struct {
	repo     repository.CourseRepository
	cacheTTL time.Duration
}

// NewCourseService 创建课程目录服务
func NewCourseService(repo repository.CourseRepository, cacheTTL time.Duration) *CourseService {
	return &CourseService{repo: repo, cacheTTL: cacheTTL}
}

// CourseInput 后台创建/更新课程输入
type CourseInput struct {
	ID            string
	Title         string
	Description   string
	Cost          *decimal.Decimal
	AffiliateLink string
	ImageURL      string
	Level         string
	RoleID        string
	IsActive      *bool
	SortOrder     int
}

// ListPublic 前台课程列表（带缓存）
func (s *CourseService) ListPublic(ctx context.Context, filter repository.CourseListFilter) ([]models.Course, int64, error) {
	filter.OnlyActive = true
	key := cache.CourseListKey(filter.Level, filter.RoleID, filter.Search, filter.Page, filter.PageSize)
	if snapshot, ok, err := cache.GetCourseList(ctx, key); err == nil && ok {
		return snapshot.Items, snapshot.Total, nil
	} else if err != nil {
		logger.Warnw("course_list_cache_read_failed", "error", err)
	}

	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := cache.SetCourseList(ctx, key, &cache.CourseListSnapshot{Items: items, Total: total}, s.cacheTTL); err != nil {
		logger.Warnw("course_list_cache_write_failed", "error", err)
	}
	return items, total, nil
}

// GetPublic 前台课程详情（带缓存）
func (s *CourseService) GetPublic(ctx context.Context, id string) (*models.Course, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrCourseNotFound
	}
	if course, ok, err := cache.GetCourse(ctx, id); err == nil && ok {
		return course, nil
	} else if err != nil {
		logger.Warnw("course_cache_read_failed", "course_id", id, "error", err)
	}

	course, err := s.repo.GetByID(id, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if err := cache.SetCourse(ctx, course, s.cacheTTL); err != nil {
		logger.Warnw("course_cache_write_failed", "course_id", id, "error", err)
	}
	return course, nil
}

// ListAdmin 后台课程列表（含下架）
func (s *CourseService) ListAdmin(filter repository.CourseListFilter) ([]models.Course, int64, error) {
	filter.OnlyActive = false
	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return items, total, nil
}

// GetAdmin 后台课程详情
func (s *CourseService) GetAdmin(id string) (*models.Course, error) {
	course, err := s.repo.GetByID(strings.TrimSpace(id), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// Create 创建课程
func (s *CourseService) Create(ctx context.Context, input CourseInput) (*models.Course, error) {
	id := strings.TrimSpace(input.ID)
	if !courseIDPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: id must match %s", ErrCourseInvalid, courseIDPattern.String())
	}
	existing, err := s.repo.GetByID(id, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if existing != nil {
		return nil, ErrCourseExists
	}
	course := &models.Course{ID: id, IsActive: true}
	if err := applyCourseInput(course, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(course); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	s.invalidate(ctx, id)
	return course, nil
}

// Update 更新课程
func (s *CourseService) Update(ctx context.Context, id string, input CourseInput) (*models.Course, error) {
	course, err := s.GetAdmin(id)
	if err != nil {
		return nil, err
	}
	if err := applyCourseInput(course, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(course); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	s.invalidate(ctx, course.ID)
	return course, nil
}

// Delete 软删除课程，已购权益不受影响
func (s *CourseService) Delete(ctx context.Context, id string) error {
	course, err := s.GetAdmin(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(course.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	s.invalidate(ctx, course.ID)
	return nil
}

func (s *CourseService) invalidate(ctx context.Context, id string) {
	if err := cache.InvalidateCourse(ctx, id); err != nil {
		logger.Warnw("course_cache_invalidate_failed", "course_id", id, "error", err)
	}
}

func applyCourseInput(course *models.Course, input CourseInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrCourseInvalid)
	}
	if input.Cost != nil {
		if input.Cost.IsNegative() {
			return fmt.Errorf("%w: cost must not be negative", ErrCourseInvalid)
		}
		course.Cost = models.NewNullMoney(*input.Cost)
	} else {
		course.Cost = models.NullMoney{}
	}
	course.Title = title
	course.Description = strings.TrimSpace(input.Description)
	course.AffiliateLink = strings.TrimSpace(input.AffiliateLink)
	course.ImageURL = strings.TrimSpace(input.ImageURL)
	course.Level = strings.TrimSpace(input.Level)
	course.RoleID = strings.TrimSpace(input.RoleID)
	course.SortOrder = input.SortOrder
	if input.IsActive != nil {
		course.IsActive = *input.IsActive
	}
	return nil
}
