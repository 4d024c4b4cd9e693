package logic

import (
	"errors"
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// EventStore 原始事件的暂存层，按事件族分表，只追加不删除
type EventStore struct {
	db *gorm.DB
}

// NewEventStore 创建事件暂存层
func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) table(family model.EventFamily) *gorm.DB {
	return s.db.Table(family.TableName())
}

// InsertRawEvent 写入原始事件。同一条链上日志 (block_num, tx_hash, log_index)
// 重复写入是无操作，且不会覆盖已存储的payload。返回是否真正新建了记录。
func (s *EventStore) InsertRawEvent(family model.EventFamily, event *model.RawEvent) (bool, error) {
	if err := s.validateEvent(event); err != nil {
		return false, err
	}

	var existing model.RawEvent
	err := s.table(family).
		Where("block_num = ? AND tx_hash = ? AND log_index = ?", event.BlockNum, event.TxHash, event.LogIndex).
		First(&existing).Error
	if err == nil {
		// 已存在，保持payload与处理状态不变
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check raw event existence: %w", err)
	}

	if err := s.table(family).Create(event).Error; err != nil {
		return false, fmt.Errorf("failed to insert raw event: %w", err)
	}
	return true, nil
}

// ReadUnprocessed 按区块号升序返回未消费的事件。升序读取是
// 同一事件族内按链上顺序消费的唯一保证。
func (s *EventStore) ReadUnprocessed(family model.EventFamily, limit int) ([]model.RawEvent, error) {
	var events []model.RawEvent
	if err := s.table(family).
		Where("processed = ?", false).
		Order("block_num ASC, log_index ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to read unprocessed events: %w", err)
	}
	return events, nil
}

// MarkProcessed 标记事件消费结果。这是原始事件创建后唯一的投影侧变更路径。
func (s *EventStore) MarkProcessed(family model.EventFamily, id int64, errorCode int, errorMsg string) error {
	updates := map[string]interface{}{
		"processed":  true,
		"error_code": errorCode,
		"error_msg":  errorMsg,
	}
	if err := s.table(family).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to mark event %d processed: %w", id, err)
	}
	return nil
}

// ReadUndispatched 按区块号升序返回尚未通知订阅方的事件
func (s *EventStore) ReadUndispatched(family model.EventFamily, limit int) ([]model.RawEvent, error) {
	var events []model.RawEvent
	if err := s.table(family).
		Where("dispatched = ?", false).
		Order("block_num ASC, log_index ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to read undispatched events: %w", err)
	}
	return events, nil
}

// MarkDispatched 标记事件已通知。有订阅方失败时记录错误码，但事件不再重投。
// 推送错误写入独立字段，与消费阶段的错误记录互不干扰。
func (s *EventStore) MarkDispatched(family model.EventFamily, id int64, errorCode int, errorMsg string) error {
	updates := map[string]interface{}{
		"dispatched": true,
	}
	if errorCode != model.ErrorCodeNone {
		updates["dispatch_error_code"] = errorCode
		updates["dispatch_error_msg"] = errorMsg
	}
	if err := s.table(family).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to mark event %d dispatched: %w", id, err)
	}
	return nil
}

// CountUnprocessed 统计未消费事件数
func (s *EventStore) CountUnprocessed(family model.EventFamily) (int64, error) {
	var count int64
	if err := s.table(family).Where("processed = ?", false).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unprocessed events: %w", err)
	}
	return count, nil
}

// GetEvents 分页查询事件记录
func (s *EventStore) GetEvents(family model.EventFamily, eventName string, page, pageSize int) ([]model.RawEvent, int64, error) {
	var events []model.RawEvent
	var total int64

	query := s.table(family)
	if eventName != "" {
		query = query.Where("event_name = ?", eventName)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("block_num DESC").Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, total, nil
}

// validateEvent 验证事件数据
func (s *EventStore) validateEvent(event *model.RawEvent) error {
	if event.EventName == "" {
		return errors.New("event name must not be empty")
	}
	if event.TxHash == "" {
		return errors.New("transaction hash must not be empty")
	}
	if event.BlockNum <= 0 {
		return errors.New("block number must be positive")
	}
	return nil
}
