package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
)

// Store 内容寻址的元数据存储
type Store interface {
	// GetJSON 按内容哈希获取JSON文档并反序列化
	GetJSON(ctx context.Context, hash string, out interface{}) error
	// GetRaw 按内容哈希获取原始字节
	GetRaw(ctx context.Context, hash string) ([]byte, error)
}

// IpfsClient 通过IPFS网关读取内容寻址的元数据
type IpfsClient struct {
	gatewayUrl string
	httpClient *http.Client
}

// NewIpfsClient 创建IPFS网关客户端
func NewIpfsClient(cfg config.IpfsConfig) *IpfsClient {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IpfsClient{
		gatewayUrl: strings.TrimRight(cfg.GatewayUrl, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetRaw 按内容哈希获取原始字节
func (c *IpfsClient) GetRaw(ctx context.Context, hash string) ([]byte, error) {
	url := fmt.Sprintf("%s/ipfs/%s", c.gatewayUrl, hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata %s: %w", hash, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata fetch %s returned status %d", hash, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata %s: %w", hash, err)
	}
	return data, nil
}

// GetJSON 按内容哈希获取JSON文档并反序列化
func (c *IpfsClient) GetJSON(ctx context.Context, hash string, out interface{}) error {
	data, err := c.GetRaw(ctx, hash)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode metadata %s: %w", hash, err)
	}
	return nil
}
