package logic

import (
	"testing"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openedChannel(channelId int64) *model.Channel {
	return &model.Channel{
		ChannelId:       channelId,
		Sender:          "0x1111111111111111111111111111111111111111",
		Signer:          "0x1111111111111111111111111111111111111111",
		Recipient:       "0x2222222222222222222222222222222222222222",
		GroupId:         "m5FKbq4/44hS/OC5nk6AD+Ab6CHBCBxSHYQDmnbfrCo=",
		BalanceInCogs:   "10",
		Pending:         "0",
		Nonce:           0,
		Expiration:      11000,
		ConsumedBalance: "0",
	}
}

func TestChannelLogic_UpsertOpenedChannel(t *testing.T) {
	channels := NewChannelLogic(newTestDB(t))

	require.NoError(t, channels.UpsertOpenedChannel(openedChannel(23)))

	ch, err := channels.GetChannel(23)
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, "10", ch.BalanceInCogs)

	// 重复的打开事件退化为覆盖更新
	reopened := openedChannel(23)
	reopened.BalanceInCogs = "25"
	reopened.Nonce = 1
	require.NoError(t, channels.UpsertOpenedChannel(reopened))

	ch, err = channels.GetChannel(23)
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, "25", ch.BalanceInCogs)
	assert.Equal(t, int64(1), ch.Nonce)

	var count int64
	require.NoError(t, channels.db.Model(&model.Channel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestChannelLogic_ApplyChainStateCreatesMissingRow(t *testing.T) {
	channels := NewChannelLogic(newTestDB(t))

	// 打开事件未入库时链上状态同步也要能建行
	err := channels.ApplyChainState(42,
		"0x1111111111111111111111111111111111111111",
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"m5FKbq4/44hS/OC5nk6AD+Ab6CHBCBxSHYQDmnbfrCo=",
		"100", 2, 20000)
	require.NoError(t, err)

	ch, err := channels.GetChannel(42)
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, "100", ch.BalanceInCogs)
	assert.Equal(t, int64(2), ch.Nonce)
	assert.Equal(t, "0", ch.ConsumedBalance)
}

func TestChannelLogic_UpdateConsumedBalanceIsMonotonic(t *testing.T) {
	channels := NewChannelLogic(newTestDB(t))
	require.NoError(t, channels.UpsertOpenedChannel(openedChannel(23)))

	require.NoError(t, channels.UpdateConsumedBalance(23, "5"))

	ch, err := channels.GetChannel(23)
	require.NoError(t, err)
	assert.Equal(t, "5", ch.ConsumedBalance)

	// 落后的报告被忽略
	require.NoError(t, channels.UpdateConsumedBalance(23, "3"))
	ch, err = channels.GetChannel(23)
	require.NoError(t, err)
	assert.Equal(t, "5", ch.ConsumedBalance)

	// 非法数值报错
	assert.Error(t, channels.UpdateConsumedBalance(23, "not-a-number"))

	// 不存在的通道报错
	assert.Error(t, channels.UpdateConsumedBalance(999, "1"))
}
