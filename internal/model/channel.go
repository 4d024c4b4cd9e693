package model

import (
	"time"
)

// Channel 支付通道的投影
type Channel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ChannelId       int64  `json:"channel_id" gorm:"uniqueIndex:uk_channel;not null"`
	Sender          string `json:"sender" gorm:"uniqueIndex:uk_channel;not null"`
	Signer          string `json:"signer" gorm:"uniqueIndex:uk_channel"`
	Recipient       string `json:"recipient" gorm:"uniqueIndex:uk_channel;not null"`
	GroupId         string `json:"group_id" gorm:"uniqueIndex:uk_channel;not null"` // 链上bytes32的base64表示
	BalanceInCogs   string `json:"balance_in_cogs"`                                 // 十进制字符串，cogs为最小支付单位
	Pending         string `json:"pending" gorm:"default:0"`
	Nonce           int64  `json:"nonce" gorm:"default:0"`
	Expiration      int64  `json:"expiration"`
	ConsumedBalance string `json:"consumed_balance" gorm:"default:0"` // 本地维护，单调不减
}

// TableName 自定义表名
func (Channel) TableName() string {
	return "channel"
}
