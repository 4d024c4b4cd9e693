package model

import (
	"time"
)

// EventFamily 事件族，每个事件族对应一张独立的原始事件表
type EventFamily string

const (
	EventFamilyRegistry EventFamily = "registry" // 注册表合约事件（组织/服务）
	EventFamilyMpe      EventFamily = "mpe"      // 支付通道合约事件
)

// AllEventFamilies 返回所有事件族
func AllEventFamilies() []EventFamily {
	return []EventFamily{EventFamilyRegistry, EventFamilyMpe}
}

// TableName 事件族对应的原始事件表名
func (f EventFamily) TableName() string {
	return string(f) + "_raw_event"
}

// RawEvent 链上原始事件记录（按事件族分表，只追加不删除）
type RawEvent struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BlockNum   int64  `json:"block_num" gorm:"not null"`
	EventName  string `json:"event_name" gorm:"not null"`
	Data       string `json:"data" gorm:"type:text"` // 事件参数的JSON序列化
	TxHash     string `json:"tx_hash" gorm:"not null"`
	LogIndex   int64  `json:"log_index"`
	Processed  bool   `json:"processed" gorm:"default:false"`  // 投影层是否已消费
	Dispatched bool   `json:"dispatched" gorm:"default:false"` // 订阅方是否已通知
	ErrorCode  int    `json:"error_code" gorm:"default:0"`     // 解码/投影阶段的处理结果
	ErrorMsg   string `json:"error_msg" gorm:"type:text"`

	// 推送阶段与消费阶段独立调度，错误单独记录互不覆盖
	DispatchErrorCode int    `json:"dispatch_error_code" gorm:"default:0"`
	DispatchErrorMsg  string `json:"dispatch_error_msg" gorm:"type:text"`
}

// 处理结果错误码
const (
	ErrorCodeNone      = 0
	ErrorCodeDecode    = 1 // 事件参数解码失败
	ErrorCodeReconcile = 2 // 投影更新失败
	ErrorCodeDispatch  = 3 // 订阅方通知失败
)
