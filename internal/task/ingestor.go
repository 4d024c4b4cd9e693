package task

import (
	"context"
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// LogSource 一个事件族的链上日志来源
type LogSource interface {
	// HeadBlock 链上最新区块号
	HeadBlock(ctx context.Context) (int64, error)
	// FetchEvents 抓取并解析[from, to]范围内的合约日志
	FetchEvents(ctx context.Context, fromBlock, toBlock int64) ([]model.RawEvent, error)
	// DeployBlock 合约部署区块号，扫描不会早于该区块
	DeployBlock() int64
	// BatchLimit 单次扫描的最大区块跨度
	BatchLimit() int64
}

// Ingestor 把一个事件族的链上日志批量落入暂存表并推进水位。
// 任何一条写入失败都不推进水位，下一轮从同一位置重扫，
// 靠暂存表的幂等写入保证重复扫描无副作用。
type Ingestor struct {
	store   *logic.EventStore
	markers *logic.MarkerStore
	source  LogSource
	family  model.EventFamily
}

// NewIngestor 创建事件采集器
func NewIngestor(db *gorm.DB, source LogSource, family model.EventFamily) *Ingestor {
	return &Ingestor{
		store:   logic.NewEventStore(db),
		markers: logic.NewMarkerStore(db),
		source:  source,
		family:  family,
	}
}

// RunOnce 执行一轮采集
func (i *Ingestor) RunOnce(ctx context.Context) error {
	last, err := i.markers.GetLastBlock(i.family)
	if err != nil {
		return err
	}

	head, err := i.source.HeadBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to read head block for %s: %w", i.family, err)
	}

	from := last + 1
	if deploy := i.source.DeployBlock(); from < deploy {
		from = deploy
	}
	if from > head {
		return nil
	}

	to := head
	if limit := i.source.BatchLimit(); limit > 0 && to > from+limit-1 {
		to = from + limit - 1
	}

	events, err := i.source.FetchEvents(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch %s logs for blocks [%d, %d]: %w", i.family, from, to, err)
	}

	created := 0
	for idx := range events {
		isNew, err := i.store.InsertRawEvent(i.family, &events[idx])
		if err != nil {
			// 不推进水位，下一轮重扫同一区间
			return fmt.Errorf("failed to store %s event at block %d: %w", i.family, events[idx].BlockNum, err)
		}
		if isNew {
			created++
		}
	}

	if err := i.markers.Advance(i.family, to); err != nil {
		return err
	}

	if created > 0 {
		logger.Info("Ingested %d new %s events from blocks [%d, %d]", created, i.family, from, to)
	} else {
		logger.Debug("No new %s events in blocks [%d, %d]", i.family, from, to)
	}
	return nil
}
