package cron

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupPayload(text string) Payload {
	return Payload{MessageType: TargetGroup, TargetID: 10, SelfID: 1, Message: text}
}

func TestNewService(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "jobs.json")

	service := NewService(storePath)
	require.NotNil(t, service)

	status := service.Status()
	assert.False(t, status["running"].(bool))
	assert.Equal(t, 0, status["totalJobs"])
	assert.Equal(t, storePath, status["storePath"])
	assert.NotContains(t, status, "nextRun")
}

func TestAddJob(t *testing.T) {
	service := NewService(filepath.Join(t.TempDir(), "jobs.json"))

	job, err := service.AddJob("早安", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, groupPayload("早上好"))
	require.NoError(t, err)
	require.NotNil(t, job)

	assert.Equal(t, "早安", job.Name)
	assert.Equal(t, ScheduleTypeEvery, job.Schedule.Type)
	assert.Equal(t, "早上好", job.Payload.Message)
	assert.Equal(t, int64(10), job.Payload.TargetID)
	assert.True(t, job.Enabled)
	assert.Len(t, job.ID, 36)

	assert.Len(t, service.ListJobs(), 1)
	assert.Contains(t, service.Status(), "nextRun")
}

func TestAddJobValidation(t *testing.T) {
	service := NewService("")

	tests := []struct {
		name     string
		schedule Schedule
		payload  Payload
		want     error
	}{
		{"bad cron", Schedule{Type: ScheduleTypeCron, Expr: "every day"}, groupPayload("x"), ErrInvalidSchedule},
		{"zero interval", Schedule{Type: ScheduleTypeEvery}, groupPayload("x"), ErrInvalidSchedule},
		{"once without time", Schedule{Type: ScheduleTypeOnce}, groupPayload("x"), ErrInvalidSchedule},
		{"unknown type", Schedule{Type: "weekly"}, groupPayload("x"), ErrInvalidSchedule},
		{"discuss target", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, Payload{MessageType: "discuss", TargetID: 1, Message: "x"}, ErrInvalidPayload},
		{"missing target", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, Payload{MessageType: TargetPrivate, Message: "x"}, ErrInvalidPayload},
		{"empty message", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, groupPayload(""), ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.AddJob(tt.name, tt.schedule, tt.payload)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, service.ListJobs())
}

func TestGetJob(t *testing.T) {
	service := NewService(filepath.Join(t.TempDir(), "jobs.json"))
	job, err := service.AddJob("Test", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, groupPayload("Test"))
	require.NoError(t, err)

	found, ok := service.GetJob(job.ID)
	assert.True(t, ok)
	assert.Equal(t, job.Name, found.Name)

	_, ok = service.GetJob("non-existent")
	assert.False(t, ok)
}

func TestRemoveJob(t *testing.T) {
	service := NewService(filepath.Join(t.TempDir(), "jobs.json"))
	job, err := service.AddJob("Test", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, groupPayload("Test"))
	require.NoError(t, err)

	require.NoError(t, service.RemoveJob(job.ID))
	assert.Len(t, service.ListJobs(), 0)

	assert.ErrorIs(t, service.RemoveJob("non-existent"), ErrJobNotFound)
}

func TestEnableJob(t *testing.T) {
	service := NewService(filepath.Join(t.TempDir(), "jobs.json"))
	job, err := service.AddJob("Test", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, groupPayload("Test"))
	require.NoError(t, err)

	updated, err := service.EnableJob(job.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, 0, service.Status()["enabledJobs"])

	updated, err = service.EnableJob(job.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Enabled)

	_, err = service.EnableJob("non-existent", false)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestListJobsOrdered(t *testing.T) {
	service := NewService("")
	first, err := service.AddJob("a", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, groupPayload("a"))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := service.AddJob("b", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, groupPayload("b"))
	require.NoError(t, err)

	jobs := service.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, first.ID, jobs[0].ID)
	assert.Equal(t, second.ID, jobs[1].ID)
}

func TestJobPersistence(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "jobs.json")

	service1 := NewService(storePath)
	job, err := service1.AddJob("Persistent Job", Schedule{Type: ScheduleTypeCron, Expr: "30 8 * * 1-5"}, groupPayload("[CQ:face,id=1]"))
	require.NoError(t, err)

	service2 := NewService(storePath)
	loaded, ok := service2.GetJob(job.ID)
	assert.True(t, ok)
	assert.Equal(t, job.Name, loaded.Name)
	assert.Equal(t, "30 8 * * 1-5", loaded.Schedule.Expr)
	assert.Equal(t, job.Payload, loaded.Payload)
}

func TestJobNextRun(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)

	tests := []struct {
		name   string
		job    *Job
		wantOk bool
		want   time.Time
	}{
		{
			name:   "every job",
			job:    &Job{Enabled: true, Schedule: Schedule{Type: ScheduleTypeEvery, EveryMs: 60000}},
			wantOk: true,
			want:   now.Add(time.Minute),
		},
		{
			name:   "cron job",
			job:    &Job{Enabled: true, Schedule: Schedule{Type: ScheduleTypeCron, Expr: "0 9 * * *"}},
			wantOk: true,
			want:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
		},
		{
			name:   "disabled job",
			job:    &Job{Enabled: false, Schedule: Schedule{Type: ScheduleTypeEvery, EveryMs: 60000}},
			wantOk: false,
		},
		{
			name:   "once job in future",
			job:    &Job{Enabled: true, Schedule: Schedule{Type: ScheduleTypeOnce, AtMs: now.Add(time.Hour).UnixMilli()}},
			wantOk: true,
			want:   now.Add(time.Hour),
		},
		{
			name:   "once job in past",
			job:    &Job{Enabled: true, Schedule: Schedule{Type: ScheduleTypeOnce, AtMs: now.Add(-time.Hour).UnixMilli()}},
			wantOk: false,
		},
		{
			name:   "invalid every",
			job:    &Job{Enabled: true, Schedule: Schedule{Type: ScheduleTypeEvery, EveryMs: 0}},
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := tt.job.NextRun(now)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.True(t, tt.want.Equal(next), "got %s want %s", next, tt.want)
			}
		})
	}
}

func TestServiceStartStop(t *testing.T) {
	service := NewService(filepath.Join(t.TempDir(), "jobs.json"))
	_, err := service.AddJob("Test", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, groupPayload("Test"))
	require.NoError(t, err)

	require.NoError(t, service.Start())
	assert.True(t, service.IsRunning())
	assert.Error(t, service.Start())

	service.Stop()
	assert.False(t, service.IsRunning())
	service.Stop()
}

func TestOnceJobRunsAndDisables(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "jobs.json")
	service := NewService(storePath)

	executed := make(chan *Job, 1)
	service.SetJobHandler(func(ctx context.Context, job *Job) error {
		executed <- job
		return errors.New("gateway offline")
	})

	require.NoError(t, service.Start())
	defer service.Stop()

	at := time.Now().Add(300 * time.Millisecond).UnixMilli()
	job, err := service.AddJob("提醒", Schedule{Type: ScheduleTypeOnce, AtMs: at}, groupPayload("开会"))
	require.NoError(t, err)

	select {
	case got := <-executed:
		assert.Equal(t, job.ID, got.ID)
		assert.Equal(t, "开会", got.Payload.Message)
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	require.Eventually(t, func() bool {
		j, ok := service.GetJob(job.ID)
		return ok && !j.Enabled && j.LastRun > 0
	}, time.Second, 10*time.Millisecond)

	j, _ := service.GetJob(job.ID)
	assert.Equal(t, "gateway offline", j.LastErr)
}

func TestDisabledJobDoesNotRun(t *testing.T) {
	service := NewService("")
	executed := make(chan struct{}, 1)
	service.SetJobHandler(func(ctx context.Context, job *Job) error {
		executed <- struct{}{}
		return nil
	})

	at := time.Now().Add(200 * time.Millisecond).UnixMilli()
	job, err := service.AddJob("x", Schedule{Type: ScheduleTypeOnce, AtMs: at}, groupPayload("x"))
	require.NoError(t, err)
	_, err = service.EnableJob(job.ID, false)
	require.NoError(t, err)

	require.NoError(t, service.Start())
	defer service.Stop()

	select {
	case <-executed:
		t.Fatal("disabled job ran")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestServiceWithEmptyStorePath(t *testing.T) {
	service := NewService("")

	job, err := service.AddJob("Test", Schedule{Type: ScheduleTypeEvery, EveryMs: 1000}, groupPayload("Test"))
	require.NoError(t, err)
	assert.NotNil(t, job)
	assert.Len(t, service.ListJobs(), 1)

	// 没有 storePath 时不会共享任务
	service2 := NewService("")
	assert.Len(t, service2.ListJobs(), 0)
}

func TestLoadCorruptedFile(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(storePath, []byte("not valid json"), 0644))

	service := NewService(storePath)
	assert.NotNil(t, service)
	assert.Len(t, service.ListJobs(), 0)
}
