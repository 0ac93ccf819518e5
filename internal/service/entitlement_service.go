package service

import (
	"fmt"
	"strings"

	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/repository"
)

// EntitlementService 用户课程权益读取服务
type EntitlementService struct {
	repo repository.EntitlementRepository
}

// NewEntitlementService 创建权益读取服务
func NewEntitlementService(repo repository.EntitlementRepository) *EntitlementService {
	return &EntitlementService{repo: repo}
}

// ListByUser 获取用户全部课程权益
func (s *EntitlementService) ListByUser(userID string) ([]models.Entitlement, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	items, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return items, nil
}

// Get 获取用户单个课程权益，未购买返回 ErrEntitlementNotFound
func (s *EntitlementService) Get(userID, courseID string) (*models.Entitlement, error) {
	userID = strings.TrimSpace(userID)
	courseID = strings.TrimSpace(courseID)
	if userID == "" || courseID == "" {
		return nil, fmt.Errorf("%w: user id and course id are required", ErrValidation)
	}
	entitlement, err := s.repo.GetByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if entitlement == nil {
		return nil, ErrEntitlementNotFound
	}
	return entitlement, nil
}
