package logic

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// ChannelLogic 支付通道投影的业务逻辑
type ChannelLogic struct {
	db *gorm.DB
}

// NewChannelLogic 创建通道业务逻辑
func NewChannelLogic(db *gorm.DB) *ChannelLogic {
	return &ChannelLogic{db: db}
}

// UpsertOpenedChannel 通道打开时插入投影行。重复的打开事件退化为
// 余额/nonce/过期时间的覆盖更新。
func (c *ChannelLogic) UpsertOpenedChannel(ch *model.Channel) error {
	var existing model.Channel
	err := c.db.Where("channel_id = ? AND sender = ? AND recipient = ? AND group_id = ?",
		ch.ChannelId, ch.Sender, ch.Recipient, ch.GroupId).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to fetch channel %d: %w", ch.ChannelId, err)
		}
		if err := c.db.Create(ch).Error; err != nil {
			return fmt.Errorf("failed to create channel %d: %w", ch.ChannelId, err)
		}
		return nil
	}

	updates := map[string]interface{}{
		"signer":          ch.Signer,
		"balance_in_cogs": ch.BalanceInCogs,
		"pending":         ch.Pending,
		"nonce":           ch.Nonce,
		"expiration":      ch.Expiration,
	}
	if err := c.db.Model(&model.Channel{}).Where("id = ?", existing.Id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update channel %d: %w", ch.ChannelId, err)
	}
	return nil
}

// ApplyChainState 用链上读取的全量通道状态覆盖投影。通道行不存在时创建，
// 保证错过打开事件后仍能收敛。
func (c *ChannelLogic) ApplyChainState(channelId int64, sender, signer, recipient, groupId, balance string, nonce, expiration int64) error {
	var existing model.Channel
	err := c.db.Where("channel_id = ?", channelId).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to fetch channel %d: %w", channelId, err)
		}
		ch := model.Channel{
			ChannelId:       channelId,
			Sender:          sender,
			Signer:          signer,
			Recipient:       recipient,
			GroupId:         groupId,
			BalanceInCogs:   balance,
			Pending:         "0",
			Nonce:           nonce,
			Expiration:      expiration,
			ConsumedBalance: "0",
		}
		if err := c.db.Create(&ch).Error; err != nil {
			return fmt.Errorf("failed to create channel %d: %w", channelId, err)
		}
		return nil
	}

	updates := map[string]interface{}{
		"balance_in_cogs": balance,
		"nonce":           nonce,
		"expiration":      expiration,
	}
	if err := c.db.Model(&model.Channel{}).Where("id = ?", existing.Id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update channel %d: %w", channelId, err)
	}
	return nil
}

// GetChannel 按通道ID获取投影行
func (c *ChannelLogic) GetChannel(channelId int64) (*model.Channel, error) {
	var ch model.Channel
	if err := c.db.Where("channel_id = ?", channelId).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch channel %d: %w", channelId, err)
	}
	return &ch, nil
}

// GetChannels 按参与方过滤获取通道列表
func (c *ChannelLogic) GetChannels(sender, recipient string, page, pageSize int) ([]model.Channel, int64, error) {
	var channels []model.Channel
	var total int64

	query := c.db.Model(&model.Channel{})
	if sender != "" {
		query = query.Where("sender = ?", sender)
	}
	if recipient != "" {
		query = query.Where("recipient = ?", recipient)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count channels: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("channel_id ASC").Find(&channels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list channels: %w", err)
	}

	return channels, total, nil
}

// UpdateConsumedBalance 更新本地维护的已消耗余额。该值由已验签的
// 客户端报告驱动，独立于链上同步，只允许单调增长。
func (c *ChannelLogic) UpdateConsumedBalance(channelId int64, consumed string) error {
	newVal, ok := new(big.Int).SetString(consumed, 10)
	if !ok {
		return fmt.Errorf("invalid consumed balance %q", consumed)
	}

	var ch model.Channel
	if err := c.db.Where("channel_id = ?", channelId).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("channel not found")
		}
		return fmt.Errorf("failed to fetch channel %d: %w", channelId, err)
	}

	current := new(big.Int)
	if ch.ConsumedBalance != "" {
		if _, ok := current.SetString(ch.ConsumedBalance, 10); !ok {
			current.SetInt64(0)
		}
	}
	if newVal.Cmp(current) <= 0 {
		// 落后或重复的报告直接忽略
		return nil
	}

	if err := c.db.Model(&model.Channel{}).Where("id = ?", ch.Id).
		Update("consumed_balance", newVal.String()).Error; err != nil {
		return fmt.Errorf("failed to update consumed balance for channel %d: %w", channelId, err)
	}
	return nil
}
