package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Lichas/cqhttp-go/internal/logging"
)

// JobFunc 任务执行函数
type JobFunc func(ctx context.Context, job *Job) error

// Service 定时消息服务
type Service struct {
	jobs      map[string]*Job
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	storePath string
	running   bool
	onJob     JobFunc
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewService 创建服务并从 storePath 加载任务
func NewService(storePath string) *Service {
	s := &Service{
		jobs:      make(map[string]*Job),
		entries:   make(map[string]cron.EntryID),
		storePath: storePath,
		cron:      cron.New(),
	}
	if err := s.load(); err != nil {
		cronLog("load %s: %v", storePath, err)
	}
	return s
}

// SetJobHandler 设置任务处理器
func (s *Service) SetJobHandler(handler JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onJob = handler
}

// AddJob 校验并添加任务
func (s *Service) AddJob(name string, schedule Schedule, payload Payload) (*Job, error) {
	if _, err := schedule.Parse(); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	job := NewJob(name, schedule, payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = job
	if err := s.save(); err != nil {
		delete(s.jobs, job.ID)
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	if s.running {
		s.scheduleJob(job)
	}
	cronLog("add job id=%s name=%q schedule=%s", job.ID, job.Name, job.Schedule.Type)
	return job, nil
}

// GetJob 获取任务
func (s *Service) GetJob(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	cp := *job
	return &cp, true
}

// RemoveJob 删除任务
func (s *Service) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	s.unscheduleJob(id)
	delete(s.jobs, id)
	cronLog("remove job id=%s", id)
	return s.save()
}

// ListJobs 按创建时间列出所有任务
func (s *Service) ListJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		cp := *job
		jobs = append(jobs, &cp)
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].Created == jobs[j].Created {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].Created < jobs[j].Created
	})
	return jobs
}

// EnableJob 启用或禁用任务
func (s *Service) EnableJob(id string, enabled bool) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	job.Enabled = enabled
	s.unscheduleJob(id)
	if enabled && s.running {
		s.scheduleJob(job)
	}
	if err := s.save(); err != nil {
		return nil, err
	}
	cp := *job
	return &cp, nil
}

// Start 调度所有已启用的任务
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("service already running")
	}

	s.running = true
	s.ctx, s.cancel = context.WithCancel(context.Background())

	for _, job := range s.jobs {
		if job.Enabled {
			s.scheduleJob(job)
		}
	}

	s.cron.Start()
	cronLog("started with %d jobs", len(s.entries))
	return nil
}

// Stop 停止调度并等待正在执行的任务
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	for id := range s.entries {
		s.unscheduleJob(id)
	}
	s.mu.Unlock()

	// 任务执行时会加锁，必须在锁外等待
	<-s.cron.Stop().Done()
	cronLog("stopped")
}

// IsRunning 检查是否在运行
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// scheduleJob 调用方持有写锁
func (s *Service) scheduleJob(job *Job) {
	sched, err := job.Schedule.Parse()
	if err != nil {
		cronLog("skip job id=%s: %v", job.ID, err)
		return
	}
	if sched.Next(time.Now()).IsZero() {
		return
	}
	id := job.ID
	s.entries[id] = s.cron.Schedule(sched, cron.FuncJob(func() {
		s.executeJob(id)
	}))
}

// unscheduleJob 调用方持有写锁
func (s *Service) unscheduleJob(id string) {
	if entry, ok := s.entries[id]; ok {
		s.cron.Remove(entry)
		delete(s.entries, id)
	}
}

// executeJob 执行任务并记录结果，一次性任务执行后自动禁用
func (s *Service) executeJob(id string) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	handler := s.onJob
	ctx := s.ctx
	var snapshot Job
	if ok {
		snapshot = *job
	}
	s.mu.RUnlock()

	if !ok || !snapshot.Enabled || handler == nil || ctx == nil {
		return
	}

	cronLog("execute job id=%s name=%q target=%s:%d", id, snapshot.Name, snapshot.Payload.MessageType, snapshot.Payload.TargetID)
	err := handler(ctx, &snapshot)
	if err != nil {
		cronLog("job failed id=%s: %v", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok = s.jobs[id]
	if !ok {
		return
	}
	job.LastRun = time.Now().UnixMilli()
	job.LastErr = ""
	if err != nil {
		job.LastErr = err.Error()
	}
	if job.Schedule.Type == ScheduleTypeOnce {
		job.Enabled = false
		s.unscheduleJob(id)
	}
	if err := s.save(); err != nil {
		cronLog("save after run id=%s: %v", id, err)
	}
}

// save 调用方持有锁
func (s *Service) save() error {
	if s.storePath == "" {
		return nil
	}

	dir := filepath.Dir(s.storePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.jobs, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.storePath, data, 0644)
}

func (s *Service) load() error {
	if s.storePath == "" {
		return nil
	}

	data, err := os.ReadFile(s.storePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var jobs map[string]*Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return err
	}
	if jobs != nil {
		s.jobs = jobs
	}
	return nil
}

// Status 获取服务状态
func (s *Service) Status() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enabledCount := 0
	var next time.Time
	now := time.Now()
	for _, job := range s.jobs {
		if !job.Enabled {
			continue
		}
		enabledCount++
		if t, ok := job.NextRun(now); ok && (next.IsZero() || t.Before(next)) {
			next = t
		}
	}

	status := map[string]interface{}{
		"running":     s.running,
		"totalJobs":   len(s.jobs),
		"enabledJobs": enabledCount,
		"storePath":   s.storePath,
	}
	if !next.IsZero() {
		status["nextRun"] = next.Format(time.RFC3339)
	}
	return status
}

func cronLog(format string, args ...interface{}) {
	if lg := logging.Get(); lg != nil && lg.Cron != nil {
		lg.Cron.Printf(format, args...)
	}
}
