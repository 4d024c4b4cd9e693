package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/singnet/snet-marketplace-service-sub002/internal/event"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
)

// DispatchJob 事件推送任务，把落库事件通知给订阅方
type DispatchJob struct {
	dispatcher *event.Dispatcher
	config     *config.Config
}

// NewDispatchJob 创建事件推送任务
func NewDispatchJob(dispatcher *event.Dispatcher, cfg *config.Config) *DispatchJob {
	return &DispatchJob{
		dispatcher: dispatcher,
		config:     cfg,
	}
}

// GetName 获取任务名称
func (j *DispatchJob) GetName() string {
	return "event_dispatcher"
}

// GetSchedule 获取调度配置
func (j *DispatchJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.DispatchInterval) * time.Second)
}

// Execute 执行任务
func (j *DispatchJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(j.config.Task.DispatchInterval)*time.Second)
	defer cancel()

	for _, family := range model.AllEventFamilies() {
		if err := j.dispatcher.Run(ctx, family); err != nil {
			logger.Error("Dispatch task for %s failed: %v", family, err)
		}
	}
}
