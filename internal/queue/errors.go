package queue

import "errors"

// ErrQueueDisabled 队列未启用
var ErrQueueDisabled = errors.New("queue disabled")

// ErrTaskConflict 同一事件的旧任务无法释放，本次未能投递
var ErrTaskConflict = errors.New("reconcile task id conflict")
