package logic

import (
	"errors"
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// MarkerStore 每个事件族的扫描水位管理
type MarkerStore struct {
	db *gorm.DB
}

// NewMarkerStore 创建水位管理器
func NewMarkerStore(db *gorm.DB) *MarkerStore {
	return &MarkerStore{db: db}
}

// GetLastBlock 读取事件族的扫描水位，不存在时初始化为0
func (s *MarkerStore) GetLastBlock(family model.EventFamily) (int64, error) {
	var marker model.BlockNumberMarker
	err := s.db.Where("event_type = ?", string(family)).First(&marker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			marker = model.BlockNumberMarker{EventType: string(family), LastBlockNumber: 0}
			if err := s.db.Create(&marker).Error; err != nil {
				return 0, fmt.Errorf("failed to initialize marker for %s: %w", family, err)
			}
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read marker for %s: %w", family, err)
	}
	return marker.LastBlockNumber, nil
}

// Advance 推进水位。单条带条件的UPDATE保证水位单调不减，
// 并发的落后写入不会回退已推进的水位。
func (s *MarkerStore) Advance(family model.EventFamily, blockNumber int64) error {
	// 确保行存在
	if _, err := s.GetLastBlock(family); err != nil {
		return err
	}

	err := s.db.Model(&model.BlockNumberMarker{}).
		Where("event_type = ? AND last_block_number < ?", string(family), blockNumber).
		Update("last_block_number", blockNumber).Error
	if err != nil {
		return fmt.Errorf("failed to advance marker for %s: %w", family, err)
	}
	return nil
}
