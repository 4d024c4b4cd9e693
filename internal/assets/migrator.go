package assets

import (
	"context"
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/metadata"
)

// Migrator 对比新旧资源哈希，只迁移发生变化的资源
type Migrator struct {
	metadataStore metadata.Store
	blobStore     Store
}

// NewMigrator 创建资源迁移器
func NewMigrator(metadataStore metadata.Store, blobStore Store) *Migrator {
	return &Migrator{
		metadataStore: metadataStore,
		blobStore:     blobStore,
	}
}

// Migrate 根据新的资源哈希表生成资源URL表。哈希未变化的资源沿用旧URL，
// 变化或新增的资源从元数据存储拉取后重新上传，消失的资源从对象存储删除。
func (m *Migrator) Migrate(ctx context.Context, keyPrefix string, prevHashes, prevUrls, newHashes map[string]string) (map[string]string, error) {
	urls := make(map[string]string, len(newHashes))

	for assetType, hash := range newHashes {
		if hash == "" {
			continue
		}
		if prevHashes[assetType] == hash && prevUrls[assetType] != "" {
			urls[assetType] = prevUrls[assetType]
			continue
		}

		data, err := m.metadataStore.GetRaw(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch asset %s (%s): %w", assetType, hash, err)
		}
		key := fmt.Sprintf("%s/%s/%s", keyPrefix, assetType, hash)
		url, err := m.blobStore.PushObject(ctx, key, data)
		if err != nil {
			return nil, fmt.Errorf("failed to push asset %s: %w", assetType, err)
		}
		urls[assetType] = url
	}

	// 清理不再引用的资源
	for assetType, url := range prevUrls {
		if _, keep := urls[assetType]; keep || url == "" {
			continue
		}
		if err := m.blobStore.Delete(ctx, url); err != nil {
			logger.Warn("Failed to delete stale asset %s (%s): %v", assetType, url, err)
		}
	}

	return urls, nil
}
