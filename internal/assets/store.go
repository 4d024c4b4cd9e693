package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
)

// Store 资源对象存储
type Store interface {
	// PushObject 写入对象并返回对外可访问的URL
	PushObject(ctx context.Context, key string, data []byte) (string, error)
	// Delete 删除对象
	Delete(ctx context.Context, url string) error
}

// FileStore 落盘到本地目录的对象存储实现
type FileStore struct {
	dir     string
	baseUrl string
}

// NewFileStore 创建本地对象存储
func NewFileStore(cfg config.StorageConfig) *FileStore {
	return &FileStore{
		dir:     cfg.AssetDir,
		baseUrl: strings.TrimRight(cfg.BaseUrl, "/"),
	}
}

// PushObject 写入对象并返回对外可访问的URL
func (s *FileStore) PushObject(ctx context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset %s: %w", key, err)
	}
	return s.baseUrl + "/" + key, nil
}

// Delete 删除对象，URL不属于本存储时是无操作
func (s *FileStore) Delete(ctx context.Context, url string) error {
	prefix := s.baseUrl + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	key := strings.TrimPrefix(url, prefix)
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset %s: %w", key, err)
	}
	return nil
}
