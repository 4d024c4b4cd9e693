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

// ReconcileJob 事件消费任务，把暂存事件落到投影表
type ReconcileJob struct {
	reconciler *event.Reconciler
	config     *config.Config
}

// NewReconcileJob 创建事件消费任务
func NewReconcileJob(reconciler *event.Reconciler, cfg *config.Config) *ReconcileJob {
	return &ReconcileJob{
		reconciler: reconciler,
		config:     cfg,
	}
}

// GetName 获取任务名称
func (j *ReconcileJob) GetName() string {
	return "event_reconciler"
}

// GetSchedule 获取调度配置
func (j *ReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.ReconcileInterval) * time.Second)
}

// Execute 执行任务
func (j *ReconcileJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(j.config.Task.ReconcileInterval)*time.Second)
	defer cancel()

	for _, family := range model.AllEventFamilies() {
		if err := j.reconciler.Run(ctx, family); err != nil {
			logger.Error("Reconcile task for %s failed: %v", family, err)
		}
	}
}
