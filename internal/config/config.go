package config

import (
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Ipfs     IpfsConfig     `mapstructure:"ipfs"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 单链配置
type ChainConfig struct {
	ChainType string                    `mapstructure:"chain_type"` // 链类型 (ethereum, polygon, etc.)
	ChainId   int64                     `mapstructure:"chain_id"`   // 链ID
	RpcUrl    string                    `mapstructure:"rpc_url"`    // RPC节点URL
	Contracts map[string]ContractConfig `mapstructure:"contracts"`  // 该链上的合约配置
}

// ContractConfig 单个合约配置
type ContractConfig struct {
	Address    string `mapstructure:"address"`     // 合约地址
	ABIPath    string `mapstructure:"abi_path"`    // ABI文件路径
	Enabled    bool   `mapstructure:"enabled"`     // 是否启用此合约
	BlockNum   int64  `mapstructure:"block_num"`   // 合约部署区块号
	BatchLimit int64  `mapstructure:"batch_limit"` // 单次扫描的最大区块跨度
}

// IpfsConfig 元数据存储（内容寻址）配置
type IpfsConfig struct {
	GatewayUrl string `mapstructure:"gateway_url"` // IPFS网关URL
	TimeoutSec int    `mapstructure:"timeout_sec"` // 请求超时（秒）
}

// StorageConfig 资源存储配置
type StorageConfig struct {
	AssetDir string `mapstructure:"asset_dir"` // 资源落盘目录
	BaseUrl  string `mapstructure:"base_url"`  // 对外访问的URL前缀
}

type TaskConfig struct {
	IngestInterval    int `mapstructure:"ingest_interval"`    // 秒
	ReconcileInterval int `mapstructure:"reconcile_interval"` // 秒
	DispatchInterval  int `mapstructure:"dispatch_interval"`  // 秒
	ReconcileLimit    int `mapstructure:"reconcile_limit"`    // 单次消费的最大事件数
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/snet-marketplace-sync")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "marketplace")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("ipfs.gateway_url", "http://localhost:8080")
	viper.SetDefault("ipfs.timeout_sec", 10)
	viper.SetDefault("storage.asset_dir", "assets")
	viper.SetDefault("storage.base_url", "http://localhost:8080/assets")
	viper.SetDefault("task.ingest_interval", 60)
	viper.SetDefault("task.reconcile_interval", 30)
	viper.SetDefault("task.dispatch_interval", 30)
	viper.SetDefault("task.reconcile_limit", 200)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}

// RegistryContract 注册表合约的配置键名
const RegistryContract = "registry"

// MpeContract 支付通道合约的配置键名
const MpeContract = "mpe"
