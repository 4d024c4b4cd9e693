package model

import (
	"time"
)

// BlockNumberMarker 每个事件族最近一次成功入库的区块号水位
type BlockNumberMarker struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventType       string `json:"event_type" gorm:"uniqueIndex;not null"` // 事件族
	LastBlockNumber int64  `json:"last_block_number" gorm:"not null;default:0"`
}

// TableName 自定义表名
func (BlockNumberMarker) TableName() string {
	return "event_blocknumber_marker"
}
