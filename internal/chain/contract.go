package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"reflect"

	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Contract 合约工具类
type Contract struct {
	address    common.Address // 合约地址
	abi        abi.ABI        // 合约ABI
	name       string         // 合约名称
	blockNum   int64          // 合约部署的区块号
	batchLimit int64          // 单次扫描的最大区块跨度
	chainId    int64          // 链ID
}

// NewContract 创建合约实例
func NewContract(name string, contractCfg config.ContractConfig, chainCfg config.ChainConfig) (*Contract, error) {
	// 加载ABI
	abiData, err := os.ReadFile(contractCfg.ABIPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ABI from %s: %w", contractCfg.ABIPath, err)
	}

	// 尝试解析为完整的编译输出文件
	var compiledOutput struct {
		ABI json.RawMessage `json:"abi"`
	}

	var parsedABI abi.ABI

	if err := json.Unmarshal(abiData, &compiledOutput); err == nil && compiledOutput.ABI != nil {
		// 从编译输出中提取ABI
		parsedABI, err = abi.JSON(bytes.NewReader(compiledOutput.ABI))
		if err != nil {
			return nil, fmt.Errorf("failed to parse ABI from compiled output: %w", err)
		}
	} else {
		// 如果不是完整编译输出，尝试直接解析为ABI数组
		parsedABI, err = abi.JSON(bytes.NewReader(abiData))
		if err != nil {
			return nil, fmt.Errorf("failed to parse ABI: %w", err)
		}
	}

	batchLimit := contractCfg.BatchLimit
	if batchLimit <= 0 {
		batchLimit = 500
	}

	return &Contract{
		address:    common.HexToAddress(contractCfg.Address),
		abi:        parsedABI,
		name:       name,
		blockNum:   contractCfg.BlockNum,
		batchLimit: batchLimit,
		chainId:    chainCfg.ChainId,
	}, nil
}

// NewContractFromABI 从内存中的ABI定义创建合约实例
func NewContractFromABI(name, address, abiJSON string, blockNum, batchLimit int64) (*Contract, error) {
	parsedABI, err := abi.JSON(bytes.NewReader([]byte(abiJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	if batchLimit <= 0 {
		batchLimit = 500
	}
	return &Contract{
		address:    common.HexToAddress(address),
		abi:        parsedABI,
		name:       name,
		blockNum:   blockNum,
		batchLimit: batchLimit,
	}, nil
}

// GetAddress 获取合约地址
func (c *Contract) GetAddress() common.Address {
	return c.address
}

// GetABI 获取合约ABI
func (c *Contract) GetABI() abi.ABI {
	return c.abi
}

// GetName 获取合约名称
func (c *Contract) GetName() string {
	return c.name
}

// GetBlockNum 获取合约部署区块号
func (c *Contract) GetBlockNum() int64 {
	return c.blockNum
}

// GetBatchLimit 获取单次扫描的最大区块跨度
func (c *Contract) GetBatchLimit() int64 {
	return c.batchLimit
}

// GetChainId 获取链ID
func (c *Contract) GetChainId() int64 {
	return c.chainId
}

// ParseEvent 解析事件日志，所有参数值归一化为可JSON序列化的形式
func (c *Contract) ParseEvent(log types.Log) (map[string]interface{}, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("log has no topics")
	}
	eventSignature := log.Topics[0].Hex()

	// 遍历ABI中的事件
	for eventName, event := range c.abi.Events {
		if event.ID.Hex() == eventSignature {
			return c.parseEvent(eventName, log, event)
		}
	}

	// 未知事件
	logger.Warn("Unknown event signature: %s in contract %s", eventSignature, c.name)
	return map[string]interface{}{
		"eventName":   "Unknown",
		"signature":   eventSignature,
		"contract":    c.name,
		"txHash":      log.TxHash.Hex(),
		"blockNumber": log.BlockNumber,
		"logIndex":    log.Index,
	}, nil
}

// parseEvent 解析事件
func (c *Contract) parseEvent(eventName string, log types.Log, event abi.Event) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	result["eventName"] = eventName
	result["contract"] = c.name
	result["txHash"] = log.TxHash.Hex()
	result["blockNumber"] = log.BlockNumber
	result["logIndex"] = log.Index

	// 解析索引参数
	topicIdx := 1
	for _, input := range event.Inputs {
		if !input.Indexed {
			continue
		}
		if topicIdx >= len(log.Topics) {
			break
		}
		value, err := c.parseTopicValue(log.Topics[topicIdx], input.Type)
		if err != nil {
			logger.Warn("Failed to parse indexed parameter %s: %v", input.Name, err)
		} else {
			result[input.Name] = normalizeValue(value)
		}
		topicIdx++
	}

	// 解析非索引参数
	if len(log.Data) > 0 {
		nonIndexedInputs := make([]abi.Argument, 0)
		for _, input := range event.Inputs {
			if !input.Indexed {
				nonIndexedInputs = append(nonIndexedInputs, input)
			}
		}

		if len(nonIndexedInputs) > 0 {
			values, err := c.abi.Unpack(eventName, log.Data)
			if err != nil {
				logger.Warn("Failed to unpack non-indexed parameters: %v", err)
			} else {
				for i, input := range nonIndexedInputs {
					if i < len(values) {
						result[input.Name] = normalizeValue(values[i])
					}
				}
			}
		}
	}

	return result, nil
}

// parseTopicValue 解析主题值
func (c *Contract) parseTopicValue(topic common.Hash, t abi.Type) (interface{}, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return new(big.Int).SetBytes(topic.Bytes()), nil
	case abi.AddressTy:
		return common.BytesToAddress(topic.Bytes()), nil
	case abi.BoolTy:
		return new(big.Int).SetBytes(topic.Bytes()).Cmp(big.NewInt(0)) > 0, nil
	case abi.FixedBytesTy, abi.BytesTy:
		return topic.Bytes(), nil
	default:
		return topic.Hex(), nil
	}
}

// normalizeValue 将ABI解码出的值归一化为稳定的JSON形式：
// 地址和字节串统一为0x十六进制字符串，大整数为十进制字符串。
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case common.Address:
		return val.Hex()
	case common.Hash:
		return val.Hex()
	case *big.Int:
		return val.String()
	case []byte:
		return hexutil.Encode(val)
	case string, bool:
		return val
	}

	// bytes32等定长字节数组从ABI解码后是 [N]uint8
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			b[i] = byte(rv.Index(i).Uint())
		}
		return hexutil.Encode(b)
	}

	return v
}
