package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/singnet/snet-marketplace-service-sub002/internal/assets"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/metadata"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// ModelCompiler 服务模型变化时触发的下游构建能力
type ModelCompiler interface {
	Compile(ctx context.Context, orgId, serviceId, modelHash string) error
}

// ServiceProcessor 服务事件处理器
type ServiceProcessor struct {
	metadataStore metadata.Store
	migrator      *assets.Migrator
	mpeAddress    string // 当前配置的escrow合约地址
	compiler      ModelCompiler
}

// NewServiceProcessor 创建服务事件处理器
func NewServiceProcessor(metadataStore metadata.Store, migrator *assets.Migrator, mpeAddress string) *ServiceProcessor {
	return &ServiceProcessor{
		metadataStore: metadataStore,
		migrator:      migrator,
		mpeAddress:    mpeAddress,
	}
}

// SetModelCompiler 设置模型构建钩子
func (p *ServiceProcessor) SetModelCompiler(compiler ModelCompiler) {
	p.compiler = compiler
}

// ProcessUpsert 处理服务创建/元数据变更。元数据声明的escrow地址与当前配置
// 不一致时服务视为过期并删除；否则覆盖服务行并从新快照整体重建全部从属行。
func (p *ServiceProcessor) ProcessUpsert(ctx context.Context, tx *gorm.DB, orgId, serviceId, metadataUri string) error {
	var doc metadata.ServiceMetadataDoc
	if err := p.metadataStore.GetJSON(ctx, StripIpfsPrefix(metadataUri), &doc); err != nil {
		return fmt.Errorf("failed to fetch service metadata for %s/%s: %w", orgId, serviceId, err)
	}

	svcLogic := logic.NewServiceLogic(tx)

	if !strings.EqualFold(doc.MpeAddress, p.mpeAddress) {
		return p.pruneStaleService(tx, svcLogic, orgId, serviceId, doc.MpeAddress)
	}

	prevMeta, err := svcLogic.GetServiceMetadata(orgId, serviceId)
	if err != nil {
		return err
	}

	if err := svcLogic.UpsertService(&model.Service{
		OrgId:     orgId,
		ServiceId: serviceId,
		HashUri:   metadataUri,
	}); err != nil {
		return err
	}

	// 迁移发生变化的资源
	var prevHashes, prevUrls map[string]string
	if prevMeta != nil {
		prevHashes = unmarshalStringMap(prevMeta.AssetsHash)
		prevUrls = unmarshalStringMap(prevMeta.AssetsUrl)
	}
	urls, err := p.migrator.Migrate(ctx, "service/"+orgId+"/"+serviceId, prevHashes, prevUrls, doc.Assets)
	if err != nil {
		return fmt.Errorf("failed to migrate service assets for %s/%s: %w", orgId, serviceId, err)
	}

	// 评分由本地维护，元数据替换时沿用旧值
	rating := `{"rating": 0.0, "total_users_rated": 0}`
	if prevMeta != nil && prevMeta.ServiceRating != "" {
		rating = prevMeta.ServiceRating
	}

	meta := model.ServiceMetadata{
		OrgId:            orgId,
		ServiceId:        serviceId,
		DisplayName:      doc.DisplayName,
		Description:      doc.ServiceDescription.Description,
		ShortDescription: doc.ServiceDescription.ShortDescription,
		Url:              doc.ServiceDescription.Url,
		Encoding:         doc.Encoding,
		Type:             doc.ServiceType,
		MpeAddress:       doc.MpeAddress,
		ModelHash:        doc.ModelIpfsHash,
		AssetsUrl:        marshalStringMap(urls),
		AssetsHash:       marshalStringMap(doc.Assets),
		ServiceRating:    rating,
		Contributors:     string(doc.Contributors),
	}
	if err := svcLogic.ReplaceMetadata(&meta); err != nil {
		return err
	}

	if err := p.replaceDependents(svcLogic, orgId, serviceId, &doc); err != nil {
		return err
	}

	// 只有模型哈希变化时才触发下游构建
	if prevMeta == nil || prevMeta.ModelHash != doc.ModelIpfsHash {
		if p.compiler != nil {
			if err := p.compiler.Compile(ctx, orgId, serviceId, doc.ModelIpfsHash); err != nil {
				return fmt.Errorf("failed to compile model for %s/%s: %w", orgId, serviceId, err)
			}
		} else {
			logger.Info("Model hash changed for %s/%s: %s", orgId, serviceId, doc.ModelIpfsHash)
		}
	}

	return nil
}

// replaceDependents 从新的元数据快照整体重建分组/端点/标签/媒体
func (p *ServiceProcessor) replaceDependents(svcLogic *logic.ServiceLogic, orgId, serviceId string, doc *metadata.ServiceMetadataDoc) error {
	groups := make([]model.ServiceGroup, 0, len(doc.Groups))
	var endpoints []model.ServiceEndpoint
	for _, g := range doc.Groups {
		groups = append(groups, model.ServiceGroup{
			OrgId:     orgId,
			ServiceId: serviceId,
			GroupId:   g.GroupId,
			GroupName: g.GroupName,
			Pricing:   string(g.Pricing),
		})
		for _, endpoint := range g.Endpoints {
			endpoints = append(endpoints, model.ServiceEndpoint{
				OrgId:       orgId,
				ServiceId:   serviceId,
				GroupId:     g.GroupId,
				Endpoint:    endpoint,
				IsAvailable: true,
			})
		}
	}
	if err := svcLogic.ReplaceGroups(orgId, serviceId, groups); err != nil {
		return err
	}
	if err := svcLogic.ReplaceEndpoints(orgId, serviceId, endpoints); err != nil {
		return err
	}

	seen := make(map[string]bool, len(doc.Tags))
	tags := make([]model.ServiceTag, 0, len(doc.Tags))
	for _, tag := range doc.Tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, model.ServiceTag{OrgId: orgId, ServiceId: serviceId, TagName: tag})
	}
	if err := svcLogic.ReplaceTags(orgId, serviceId, tags); err != nil {
		return err
	}

	// 媒体按资源类型唯一，重复类型以靠后的条目为准
	byType := make(map[string]model.ServiceMedia, len(doc.Media))
	order := make([]string, 0, len(doc.Media))
	for _, m := range doc.Media {
		assetType := m.AssetType
		if assetType == "" {
			assetType = fmt.Sprintf("media_%d", m.Order)
		}
		if _, exists := byType[assetType]; !exists {
			order = append(order, assetType)
		}
		byType[assetType] = model.ServiceMedia{
			OrgId:     orgId,
			ServiceId: serviceId,
			AssetType: assetType,
			Url:       m.Url,
			Order:     m.Order,
			FileType:  m.FileType,
			AltText:   m.AltText,
		}
	}
	media := make([]model.ServiceMedia, 0, len(byType))
	for _, assetType := range order {
		media = append(media, byType[assetType])
	}
	return svcLogic.ReplaceMedia(orgId, serviceId, media)
}

// pruneStaleService 清理escrow地址不再匹配的过期服务；
// 组织不再拥有任何服务时连同组织一起删除。
func (p *ServiceProcessor) pruneStaleService(tx *gorm.DB, svcLogic *logic.ServiceLogic, orgId, serviceId, declaredMpe string) error {
	logger.Info("Pruning stale service %s/%s (declared mpe %s, configured %s)",
		orgId, serviceId, declaredMpe, p.mpeAddress)

	if err := svcLogic.DeleteService(orgId, serviceId); err != nil {
		return err
	}

	remaining, err := svcLogic.CountByOrg(orgId)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return logic.NewOrgLogic(tx).DeleteOrganization(orgId)
	}
	return nil
}

// ProcessDelete 处理服务删除，服务不存在时是无操作
func (p *ServiceProcessor) ProcessDelete(tx *gorm.DB, orgId, serviceId string) error {
	return logic.NewServiceLogic(tx).DeleteService(orgId, serviceId)
}
