package logic

import (
	"errors"
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// SubscriptionLogic 事件订阅注册的业务逻辑
type SubscriptionLogic struct {
	db *gorm.DB
}

// NewSubscriptionLogic 创建订阅业务逻辑
func NewSubscriptionLogic(db *gorm.DB) *SubscriptionLogic {
	return &SubscriptionLogic{db: db}
}

// CreateSubscription 注册订阅方
func (s *SubscriptionLogic) CreateSubscription(sub *model.EventSubscription) error {
	if sub.EventName == "" {
		return errors.New("event name must not be empty")
	}
	if sub.Name == "" {
		return errors.New("listener name must not be empty")
	}
	if sub.Target == "" {
		return errors.New("listener target must not be empty")
	}
	if sub.Kind != model.ListenerKindWebhook && sub.Kind != model.ListenerKindFunction {
		return fmt.Errorf("unsupported listener kind %q", sub.Kind)
	}

	var count int64
	if err := s.db.Model(&model.EventSubscription{}).
		Where("event_name = ? AND name = ?", sub.EventName, sub.Name).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check subscription existence: %w", err)
	}
	if count > 0 {
		return errors.New("subscription already exists")
	}

	if err := s.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetListeners 获取某个事件名的全部启用订阅方
func (s *SubscriptionLogic) GetListeners(eventName string) ([]model.EventSubscription, error) {
	var subs []model.EventSubscription
	if err := s.db.Where("event_name = ? AND enabled = ?", eventName, true).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch listeners for %s: %w", eventName, err)
	}
	return subs, nil
}

// GetSubscriptions 获取全部订阅记录
func (s *SubscriptionLogic) GetSubscriptions() ([]model.EventSubscription, error) {
	var subs []model.EventSubscription
	if err := s.db.Order("event_name ASC, name ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// DeleteSubscription 注销订阅方
func (s *SubscriptionLogic) DeleteSubscription(id int64) error {
	result := s.db.Delete(&model.EventSubscription{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("subscription not found")
	}
	return nil
}
