package repository

import "time"

// CourseListFilter 查询课程列表的过滤条件
type CourseListFilter struct {
	Page       int
	PageSize   int
	Level      string
	RoleID     string
	Search     string
	OnlyActive bool
}

// PayoutListFilter 查询推广佣金流水的过滤条件
type PayoutListFilter struct {
	Page        int
	PageSize    int
	Status      string
	ReferrerID  string
	UserID      string
	CourseID    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PaymentEventListFilter 查询回调事件台账的过滤条件
type PaymentEventListFilter struct {
	Page      int
	PageSize  int
	Provider  string
	Status    string
	EventType string
	SessionID string
}
