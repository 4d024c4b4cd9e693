package task

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
)

// IngestJob 链上事件采集任务，一个事件族对应一个任务实例
type IngestJob struct {
	ingestor *Ingestor
	family   model.EventFamily
	config   *config.Config
}

// NewIngestJob 创建事件采集任务
func NewIngestJob(ingestor *Ingestor, family model.EventFamily, cfg *config.Config) *IngestJob {
	return &IngestJob{
		ingestor: ingestor,
		family:   family,
		config:   cfg,
	}
}

// GetName 获取任务名称
func (j *IngestJob) GetName() string {
	return fmt.Sprintf("%s_event_ingestor", j.family)
}

// GetSchedule 获取调度配置
func (j *IngestJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.IngestInterval) * time.Second)
}

// Execute 执行任务
func (j *IngestJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(j.config.Task.IngestInterval)*time.Second)
	defer cancel()

	if err := j.ingestor.RunOnce(ctx); err != nil {
		logger.Error("Ingest task for %s failed: %v", j.family, err)
	}
}
