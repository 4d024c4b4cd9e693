package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ChannelState 支付通道的链上完整状态
type ChannelState struct {
	Sender     common.Address
	Signer     common.Address
	Recipient  common.Address
	GroupId    [32]byte
	Value      *big.Int // 通道内锁定余额（cogs）
	Nonce      *big.Int
	Expiration *big.Int
}

// ChannelReader 按通道ID读取链上完整通道状态
type ChannelReader interface {
	ChannelState(ctx context.Context, channelId *big.Int) (*ChannelState, error)
}

// ChannelState 调用MPE合约的channels(uint256)读取通道全量状态。
// 每次都读取完整元组而不是增量，避免漏掉中间事件导致的漂移。
func (m *Manager) ChannelState(ctx context.Context, channelId *big.Int) (*ChannelState, error) {
	contract, err := m.GetContract(config.MpeContract)
	if err != nil {
		return nil, err
	}

	input, err := contract.GetABI().Pack("channels", channelId)
	if err != nil {
		return nil, fmt.Errorf("failed to pack channels call: %w", err)
	}

	addr := contract.GetAddress()
	msg := ethereum.CallMsg{To: &addr, Data: input}
	output, err := m.GetClient().CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call channels(%s): %w", channelId.String(), err)
	}

	values, err := contract.GetABI().Unpack("channels", output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack channels output: %w", err)
	}
	if len(values) < 7 {
		return nil, fmt.Errorf("unexpected channels output arity: %d", len(values))
	}

	state := &ChannelState{}
	var ok bool
	if state.Sender, ok = values[0].(common.Address); !ok {
		return nil, fmt.Errorf("unexpected sender type %T", values[0])
	}
	if state.Signer, ok = values[1].(common.Address); !ok {
		return nil, fmt.Errorf("unexpected signer type %T", values[1])
	}
	if state.Recipient, ok = values[2].(common.Address); !ok {
		return nil, fmt.Errorf("unexpected recipient type %T", values[2])
	}
	if state.GroupId, ok = values[3].([32]byte); !ok {
		return nil, fmt.Errorf("unexpected groupId type %T", values[3])
	}
	if state.Value, ok = values[4].(*big.Int); !ok {
		return nil, fmt.Errorf("unexpected value type %T", values[4])
	}
	if state.Nonce, ok = values[5].(*big.Int); !ok {
		return nil, fmt.Errorf("unexpected nonce type %T", values[5])
	}
	if state.Expiration, ok = values[6].(*big.Int); !ok {
		return nil, fmt.Errorf("unexpected expiration type %T", values[6])
	}

	return state, nil
}
