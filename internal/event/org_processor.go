package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/assets"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/metadata"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// OrgProcessor 组织事件处理器
type OrgProcessor struct {
	metadataStore metadata.Store
	migrator      *assets.Migrator
}

// NewOrgProcessor 创建组织事件处理器
func NewOrgProcessor(metadataStore metadata.Store, migrator *assets.Migrator) *OrgProcessor {
	return &OrgProcessor{
		metadataStore: metadataStore,
		migrator:      migrator,
	}
}

// ProcessUpsert 处理组织创建/变更：整体覆盖组织行并全量替换其支付分组
func (p *OrgProcessor) ProcessUpsert(ctx context.Context, tx *gorm.DB, orgId, owner, metadataUri string) error {
	var doc metadata.OrgMetadata
	if err := p.metadataStore.GetJSON(ctx, StripIpfsPrefix(metadataUri), &doc); err != nil {
		return fmt.Errorf("failed to fetch org metadata for %s: %w", orgId, err)
	}

	orgLogic := logic.NewOrgLogic(tx)

	// 迁移发生变化的资源
	prev, err := orgLogic.GetOrganization(orgId)
	if err != nil {
		return err
	}
	var prevHashes, prevUrls map[string]string
	if prev != nil {
		prevHashes = unmarshalStringMap(prev.AssetsHash)
		prevUrls = unmarshalStringMap(prev.OrgAssetsUrl)
	}
	urls, err := p.migrator.Migrate(ctx, "org/"+orgId, prevHashes, prevUrls, doc.Assets)
	if err != nil {
		return fmt.Errorf("failed to migrate org assets for %s: %w", orgId, err)
	}

	description, err := json.Marshal(doc.Description)
	if err != nil {
		return fmt.Errorf("failed to marshal org description for %s: %w", orgId, err)
	}

	org := model.Organization{
		OrgId:            orgId,
		OrganizationName: doc.OrgName,
		OwnerAddress:     owner,
		OrgMetadataUri:   metadataUri,
		OrgAssetsUrl:     marshalStringMap(urls),
		AssetsHash:       marshalStringMap(doc.Assets),
		Description:      string(description),
		Contacts:         string(doc.Contacts),
	}
	if err := orgLogic.UpsertOrganization(&org); err != nil {
		return err
	}

	// 分组不做增量对比，直接整体替换
	groups := make([]model.OrgGroup, 0, len(doc.Groups))
	for _, g := range doc.Groups {
		groups = append(groups, model.OrgGroup{
			OrgId:     orgId,
			GroupId:   g.GroupId,
			GroupName: g.GroupName,
			Payment:   string(g.Payment),
		})
	}
	return orgLogic.ReplaceOrgGroups(orgId, groups)
}

// ProcessDelete 处理组织删除，组织不存在时是无操作
func (p *OrgProcessor) ProcessDelete(tx *gorm.DB, orgId string) error {
	return logic.NewOrgLogic(tx).DeleteOrganization(orgId)
}

// unmarshalStringMap 反序列化JSON字符串映射，空串或坏数据返回空映射
func unmarshalStringMap(s string) map[string]string {
	m := make(map[string]string)
	if s == "" {
		return m
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return map[string]string{}
	}
	return m
}

// marshalStringMap 序列化字符串映射，nil视为空映射
func marshalStringMap(m map[string]string) string {
	if m == nil {
		m = map[string]string{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}
