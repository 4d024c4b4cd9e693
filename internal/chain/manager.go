package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Manager 单链管理器
type Manager struct {
	mu        sync.RWMutex
	contracts map[string]*Contract // 合约映射: "contractName" -> Contract
	client    *ethclient.Client    // 链客户端
	config    config.ChainConfig   // 存储链配置
}

// NewManager 创建单链管理器
func NewManager(cfg config.ChainConfig) (*Manager, error) {
	manager := &Manager{
		contracts: make(map[string]*Contract),
		config:    cfg,
	}

	// 初始化客户端
	if err := manager.initClient(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}

	// 初始化所有启用的合约
	if err := manager.initContracts(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize contracts: %w", err)
	}

	return manager, nil
}

// initClient 初始化客户端
func (m *Manager) initClient(cfg config.ChainConfig) error {
	logger.Info("Initializing chain client (type: %s, id: %d)", cfg.ChainType, cfg.ChainId)

	if cfg.RpcUrl == "" {
		return fmt.Errorf("no RPC URL configured")
	}

	supportedTypes := []string{"ethereum", "polygon", "bsc", "arbitrum", "optimism", "sepolia"}
	isSupported := false
	for _, supportedType := range supportedTypes {
		if cfg.ChainType == supportedType {
			isSupported = true
			break
		}
	}
	if !isSupported {
		return fmt.Errorf("unsupported chain type %s", cfg.ChainType)
	}

	logger.Info("Creating %s client connection (RPC: %s)", cfg.ChainType, cfg.RpcUrl)
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.ChainType, err)
	}

	// 测试连接
	if _, err := client.BlockNumber(context.TODO()); err != nil {
		client.Close()
		return fmt.Errorf("client connection test failed (%s): %w", cfg.ChainType, err)
	}

	m.client = client
	logger.Info("Successfully created %s client", cfg.ChainType)
	return nil
}

// initContracts 初始化所有合约
func (m *Manager) initContracts(cfg config.ChainConfig) error {
	var initErrors []error

	for contractName, contractCfg := range cfg.Contracts {
		if !contractCfg.Enabled {
			logger.Info("Skipping disabled contract: %s", contractName)
			continue
		}

		logger.Info("Initializing contract: %s (address: %s)", contractName, contractCfg.Address)

		contract, err := NewContract(contractName, contractCfg, cfg)
		if err != nil {
			logger.Error("Failed to create contract %s: %v", contractName, err)
			initErrors = append(initErrors, fmt.Errorf("failed to create contract %s: %w", contractName, err))
			continue
		}

		m.contracts[contractName] = contract
		logger.Info("Successfully initialized contract: %s", contractName)
	}

	if len(initErrors) > 0 {
		return initErrors[0]
	}

	logger.Info("Successfully initialized %d contracts", len(m.contracts))
	return nil
}

// GetClient 获取客户端
func (m *Manager) GetClient() *ethclient.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// GetContract 获取指定合约
func (m *Manager) GetContract(contractName string) (*Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contract, exists := m.contracts[contractName]
	if !exists {
		return nil, fmt.Errorf("contract %s not found", contractName)
	}

	return contract, nil
}

// GetContracts 获取所有合约
func (m *Manager) GetContracts() map[string]*Contract {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 返回副本以避免并发修改
	contracts := make(map[string]*Contract)
	for name, contract := range m.contracts {
		contracts[name] = contract
	}

	return contracts
}

// GetConfig 获取链配置
func (m *Manager) GetConfig() config.ChainConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetChainId 获取链ID
func (m *Manager) GetChainId() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ChainId
}

// GetHealthStatus 获取健康状态
func (m *Manager) GetHealthStatus() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	health := map[string]interface{}{
		"chain_type":    m.config.ChainType,
		"chain_id":      m.config.ChainId,
		"client_status": "connected",
		"contracts":     make(map[string]interface{}),
	}

	if m.client != nil {
		if _, err := m.client.BlockNumber(context.TODO()); err != nil {
			health["client_status"] = "disconnected"
		}
	} else {
		health["client_status"] = "not_initialized"
	}

	for contractName, contract := range m.contracts {
		contractHealth := map[string]interface{}{
			"address":   contract.GetAddress().Hex(),
			"block_num": contract.GetBlockNum(),
		}
		health["contracts"].(map[string]interface{})[contractName] = contractHealth
	}

	return health
}

// Close 关闭管理器
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		m.client.Close()
	}

	logger.Info("Chain manager closed")
	return nil
}
