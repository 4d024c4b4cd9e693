package event

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/singnet/snet-marketplace-service-sub002/internal/chain"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// ChannelProcessor 支付通道事件处理器
type ChannelProcessor struct {
	channelReader chain.ChannelReader
}

// NewChannelProcessor 创建通道事件处理器
func NewChannelProcessor(channelReader chain.ChannelReader) *ChannelProcessor {
	return &ChannelProcessor{channelReader: channelReader}
}

// ProcessOpen 处理通道打开事件
func (p *ChannelProcessor) ProcessOpen(tx *gorm.DB, ev *ChannelOpen) error {
	ch := model.Channel{
		ChannelId:       ev.ChannelId,
		Sender:          ev.Sender,
		Signer:          ev.Signer,
		Recipient:       ev.Recipient,
		GroupId:         ev.GroupId,
		BalanceInCogs:   ev.Amount,
		Pending:         "0",
		Nonce:           ev.Nonce,
		Expiration:      ev.Expiration,
		ConsumedBalance: "0",
	}
	return logic.NewChannelLogic(tx).UpsertOpenedChannel(&ch)
}

// ProcessRefresh 处理提款/延期/追加资金事件：不做增量计算，
// 从链上重读通道全量状态并覆盖投影，消除错过中间事件造成的漂移。
func (p *ChannelProcessor) ProcessRefresh(ctx context.Context, tx *gorm.DB, channelId int64) error {
	state, err := p.channelReader.ChannelState(ctx, big.NewInt(channelId))
	if err != nil {
		return fmt.Errorf("failed to read channel %d from chain: %w", channelId, err)
	}

	groupId := base64.StdEncoding.EncodeToString(state.GroupId[:])
	return logic.NewChannelLogic(tx).ApplyChainState(
		channelId,
		state.Sender.Hex(),
		state.Signer.Hex(),
		state.Recipient.Hex(),
		groupId,
		state.Value.String(),
		state.Nonce.Int64(),
		state.Expiration.Int64(),
	)
}
