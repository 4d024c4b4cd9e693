package model

import (
	"time"
)

// ListenerKind 订阅方类型
type ListenerKind string

const (
	ListenerKindWebhook  ListenerKind = "webhook"  // HTTP POST回调
	ListenerKindFunction ListenerKind = "function" // 同步调用的可调用函数
)

// EventSubscription 事件订阅方注册记录
type EventSubscription struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventName string       `json:"event_name" gorm:"uniqueIndex:uk_subscription;not null"`
	Name      string       `json:"name" gorm:"uniqueIndex:uk_subscription;not null"` // 订阅方标识
	Kind      ListenerKind `json:"kind" gorm:"not null"`
	Target    string       `json:"target" gorm:"not null"` // webhook URL或函数调用地址
	Enabled   bool         `json:"enabled" gorm:"default:true"`
}

// TableName 自定义表名
func (EventSubscription) TableName() string {
	return "event_subscription"
}
