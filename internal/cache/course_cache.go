package cache

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aipath-api/internal/models"
)

const (
	defaultCourseCacheTTL = 5 * time.Minute
	courseKeyPrefix       = "course:"
	courseListKeyPrefix   = "course_list:"
)

// CourseListSnapshot 课程列表缓存
type CourseListSnapshot struct {
	Items []models.Course `json:"items"`
	Total int64           `json:"total"`
}

func courseKey(id string) string {
	return courseKeyPrefix + id
}

// CourseListKey 根据查询条件构建课程列表缓存键
func CourseListKey(level, roleID, search string, page, pageSize int) string {
	values := url.Values{}
	values.Set("level", level)
	values.Set("role_id", roleID)
	values.Set("search", search)
	values.Set("page", fmt.Sprintf("%d", page))
	values.Set("page_size", fmt.Sprintf("%d", pageSize))
	return courseListKeyPrefix + values.Encode()
}

// GetCourse 读取课程缓存
func GetCourse(ctx context.Context, id string) (*models.Course, bool, error) {
	if id == "" {
		return nil, false, nil
	}
	var course models.Course
	hit, err := GetJSON(ctx, courseKey(id), &course)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &course, true, nil
}

// SetCourse 写入课程缓存
func SetCourse(ctx context.Context, course *models.Course, ttl time.Duration) error {
	if course == nil || course.ID == "" {
		return nil
	}
	return SetJSON(ctx, courseKey(course.ID), course, normalizeTTL(ttl))
}

// GetCourseList 读取课程列表缓存
func GetCourseList(ctx context.Context, key string) (*CourseListSnapshot, bool, error) {
	var snapshot CourseListSnapshot
	hit, err := GetJSON(ctx, key, &snapshot)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &snapshot, true, nil
}

// SetCourseList 写入课程列表缓存
func SetCourseList(ctx context.Context, key string, snapshot *CourseListSnapshot, ttl time.Duration) error {
	if snapshot == nil {
		return nil
	}
	return SetJSON(ctx, key, snapshot, normalizeTTL(ttl))
}

// InvalidateCourse 课程变更后清理详情与列表缓存
func InvalidateCourse(ctx context.Context, id string) error {
	if err := Del(ctx, courseKey(id)); err != nil {
		return err
	}
	return DelByPrefix(ctx, courseListKeyPrefix)
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultCourseCacheTTL
	}
	return ttl
}
