package cron

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ScheduleType 调度类型
type ScheduleType string

const (
	// ScheduleTypeEvery 每隔一段时间执行
	ScheduleTypeEvery ScheduleType = "every"
	// ScheduleTypeCron Cron 表达式
	ScheduleTypeCron ScheduleType = "cron"
	// ScheduleTypeOnce 一次性任务
	ScheduleTypeOnce ScheduleType = "once"
)

// 消息目标类型，与 bus.TargetPrivate / bus.TargetGroup 一致
const (
	TargetPrivate = "private"
	TargetGroup   = "group"
)

var (
	// ErrInvalidSchedule 调度配置无效
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrInvalidPayload 消息配置无效
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrJobNotFound 任务不存在
	ErrJobNotFound = errors.New("job not found")
)

// Schedule 任务调度配置
type Schedule struct {
	Type    ScheduleType `json:"type"`
	EveryMs int64        `json:"everyMs,omitempty"` // ScheduleTypeEvery
	Expr    string       `json:"expr,omitempty"`    // ScheduleTypeCron，五段式
	AtMs    int64        `json:"atMs,omitempty"`    // ScheduleTypeOnce
}

// Payload 定时发送的消息
type Payload struct {
	MessageType string `json:"messageType"` // private 或 group
	TargetID    int64  `json:"targetId"`
	SelfID      int64  `json:"selfId,omitempty"`
	Message     string `json:"message"` // CQ 码字符串
}

// Job 定时任务
type Job struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Schedule Schedule `json:"schedule"`
	Payload  Payload  `json:"payload"`
	Enabled  bool     `json:"enabled"`
	Created  int64    `json:"created"`
	LastRun  int64    `json:"lastRun,omitempty"`
	LastErr  string   `json:"lastError,omitempty"`
}

// NewJob 创建新任务
func NewJob(name string, schedule Schedule, payload Payload) *Job {
	return &Job{
		ID:       uuid.NewString(),
		Name:     name,
		Schedule: schedule,
		Payload:  payload,
		Enabled:  true,
		Created:  time.Now().UnixMilli(),
	}
}

// Parse 把调度配置转换为 robfig/cron 的 Schedule
func (s Schedule) Parse() (cron.Schedule, error) {
	switch s.Type {
	case ScheduleTypeEvery:
		if s.EveryMs <= 0 {
			return nil, fmt.Errorf("%w: everyMs must be positive", ErrInvalidSchedule)
		}
		return cron.Every(time.Duration(s.EveryMs) * time.Millisecond), nil
	case ScheduleTypeCron:
		sched, err := cron.ParseStandard(s.Expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		return sched, nil
	case ScheduleTypeOnce:
		if s.AtMs <= 0 {
			return nil, fmt.Errorf("%w: atMs is required", ErrInvalidSchedule)
		}
		return onceSchedule(time.UnixMilli(s.AtMs)), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidSchedule, s.Type)
	}
}

// Validate 检查目标与内容
func (p Payload) Validate() error {
	switch p.MessageType {
	case TargetPrivate, TargetGroup:
	default:
		return fmt.Errorf("%w: messageType %q", ErrInvalidPayload, p.MessageType)
	}
	if p.TargetID <= 0 {
		return fmt.Errorf("%w: targetId is required", ErrInvalidPayload)
	}
	if p.Message == "" {
		return fmt.Errorf("%w: message is empty", ErrInvalidPayload)
	}
	return nil
}

// NextRun 获取 now 之后的下次执行时间
func (j *Job) NextRun(now time.Time) (time.Time, bool) {
	if !j.Enabled {
		return time.Time{}, false
	}
	sched, err := j.Schedule.Parse()
	if err != nil {
		return time.Time{}, false
	}
	next := sched.Next(now)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// onceSchedule 只触发一次，过期后 Next 返回零值，robfig/cron 不再调度
type onceSchedule time.Time

func (o onceSchedule) Next(t time.Time) time.Time {
	at := time.Time(o)
	if at.After(t) {
		return at
	}
	return time.Time{}
}
