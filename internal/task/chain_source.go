package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/singnet/snet-marketplace-service-sub002/internal/chain"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
)

// ChainLogSource 基于链管理器的日志来源，一个实例对应一个合约
type ChainLogSource struct {
	manager  *chain.Manager
	contract *chain.Contract
	block    *chain.Block
}

// NewChainLogSource 创建链上日志来源
func NewChainLogSource(manager *chain.Manager, contract *chain.Contract) *ChainLogSource {
	return &ChainLogSource{
		manager:  manager,
		contract: contract,
		block:    chain.NewBlock(),
	}
}

// HeadBlock 链上最新区块号
func (s *ChainLogSource) HeadBlock(ctx context.Context) (int64, error) {
	return s.block.GetCurrentBlockNumber(ctx, s.manager.GetClient())
}

// DeployBlock 合约部署区块号
func (s *ChainLogSource) DeployBlock() int64 {
	return s.contract.GetBlockNum()
}

// BatchLimit 单次扫描的最大区块跨度
func (s *ChainLogSource) BatchLimit() int64 {
	return s.contract.GetBatchLimit()
}

// FetchEvents 抓取并解析合约在区块范围内的日志。
// ABI之外的日志跳过，解析失败视为整批失败。
func (s *ChainLogSource) FetchEvents(ctx context.Context, fromBlock, toBlock int64) ([]model.RawEvent, error) {
	logs, err := s.block.GetBatchBlockLogs(ctx, s.manager.GetClient(),
		[]common.Address{s.contract.GetAddress()}, fromBlock, toBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs for %s: %w", s.contract.GetName(), err)
	}

	events := make([]model.RawEvent, 0, len(logs))
	for _, log := range logs {
		eventData, err := s.contract.ParseEvent(log)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log (tx %s index %d): %w", log.TxHash.Hex(), log.Index, err)
		}

		eventName, _ := eventData["eventName"].(string)
		if eventName == "" || eventName == "Unknown" {
			logger.Debug("Skipping log outside contract ABI: tx %s index %d", log.TxHash.Hex(), log.Index)
			continue
		}
		data, err := json.Marshal(eventData)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event data: %w", err)
		}

		events = append(events, model.RawEvent{
			BlockNum:  int64(log.BlockNumber),
			EventName: eventName,
			Data:      string(data),
			TxHash:    log.TxHash.Hex(),
			LogIndex:  int64(log.Index),
		})
	}
	return events, nil
}
