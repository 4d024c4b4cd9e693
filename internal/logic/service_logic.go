package logic

import (
	"errors"
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// ServiceLogic 服务投影的业务逻辑
type ServiceLogic struct {
	db *gorm.DB
}

// NewServiceLogic 创建服务业务逻辑
func NewServiceLogic(db *gorm.DB) *ServiceLogic {
	return &ServiceLogic{db: db}
}

// UpsertService 按(org_id, service_id)覆盖服务行，保留本地维护的is_curated标记
func (s *ServiceLogic) UpsertService(svc *model.Service) error {
	var existing model.Service
	err := s.db.Where("org_id = ? AND service_id = ?", svc.OrgId, svc.ServiceId).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to fetch service %s/%s: %w", svc.OrgId, svc.ServiceId, err)
		}
		if err := s.db.Create(svc).Error; err != nil {
			return fmt.Errorf("failed to create service %s/%s: %w", svc.OrgId, svc.ServiceId, err)
		}
		return nil
	}

	if err := s.db.Model(&model.Service{}).
		Where("org_id = ? AND service_id = ?", svc.OrgId, svc.ServiceId).
		Update("hash_uri", svc.HashUri).Error; err != nil {
		return fmt.Errorf("failed to update service %s/%s: %w", svc.OrgId, svc.ServiceId, err)
	}
	return nil
}

// GetService 获取服务行
func (s *ServiceLogic) GetService(orgId, serviceId string) (*model.Service, error) {
	var svc model.Service
	if err := s.db.Where("org_id = ? AND service_id = ?", orgId, serviceId).First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch service %s/%s: %w", orgId, serviceId, err)
	}
	return &svc, nil
}

// GetServiceMetadata 获取服务元数据快照
func (s *ServiceLogic) GetServiceMetadata(orgId, serviceId string) (*model.ServiceMetadata, error) {
	var meta model.ServiceMetadata
	if err := s.db.Where("org_id = ? AND service_id = ?", orgId, serviceId).First(&meta).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch service metadata %s/%s: %w", orgId, serviceId, err)
	}
	return &meta, nil
}

// ReplaceMetadata 替换服务元数据快照
func (s *ServiceLogic) ReplaceMetadata(meta *model.ServiceMetadata) error {
	if err := s.db.Where("org_id = ? AND service_id = ?", meta.OrgId, meta.ServiceId).
		Delete(&model.ServiceMetadata{}).Error; err != nil {
		return fmt.Errorf("failed to delete service metadata %s/%s: %w", meta.OrgId, meta.ServiceId, err)
	}
	if err := s.db.Create(meta).Error; err != nil {
		return fmt.Errorf("failed to insert service metadata %s/%s: %w", meta.OrgId, meta.ServiceId, err)
	}
	return nil
}

// ReplaceGroups 整体替换服务分组
func (s *ServiceLogic) ReplaceGroups(orgId, serviceId string, groups []model.ServiceGroup) error {
	if err := s.db.Where("org_id = ? AND service_id = ?", orgId, serviceId).
		Delete(&model.ServiceGroup{}).Error; err != nil {
		return fmt.Errorf("failed to delete service groups %s/%s: %w", orgId, serviceId, err)
	}
	if len(groups) == 0 {
		return nil
	}
	if err := s.db.Create(&groups).Error; err != nil {
		return fmt.Errorf("failed to insert service groups %s/%s: %w", orgId, serviceId, err)
	}
	return nil
}

// ReplaceEndpoints 整体替换服务端点
func (s *ServiceLogic) ReplaceEndpoints(orgId, serviceId string, endpoints []model.ServiceEndpoint) error {
	if err := s.db.Where("org_id = ? AND service_id = ?", orgId, serviceId).
		Delete(&model.ServiceEndpoint{}).Error; err != nil {
		return fmt.Errorf("failed to delete service endpoints %s/%s: %w", orgId, serviceId, err)
	}
	if len(endpoints) == 0 {
		return nil
	}
	if err := s.db.Create(&endpoints).Error; err != nil {
		return fmt.Errorf("failed to insert service endpoints %s/%s: %w", orgId, serviceId, err)
	}
	return nil
}

// ReplaceTags 整体替换服务标签
func (s *ServiceLogic) ReplaceTags(orgId, serviceId string, tags []model.ServiceTag) error {
	if err := s.db.Where("org_id = ? AND service_id = ?", orgId, serviceId).
		Delete(&model.ServiceTag{}).Error; err != nil {
		return fmt.Errorf("failed to delete service tags %s/%s: %w", orgId, serviceId, err)
	}
	if len(tags) == 0 {
		return nil
	}
	if err := s.db.Create(&tags).Error; err != nil {
		return fmt.Errorf("failed to insert service tags %s/%s: %w", orgId, serviceId, err)
	}
	return nil
}

// ReplaceMedia 整体替换服务媒体资源
func (s *ServiceLogic) ReplaceMedia(orgId, serviceId string, media []model.ServiceMedia) error {
	if err := s.db.Where("org_id = ? AND service_id = ?", orgId, serviceId).
		Delete(&model.ServiceMedia{}).Error; err != nil {
		return fmt.Errorf("failed to delete service media %s/%s: %w", orgId, serviceId, err)
	}
	if len(media) == 0 {
		return nil
	}
	if err := s.db.Create(&media).Error; err != nil {
		return fmt.Errorf("failed to insert service media %s/%s: %w", orgId, serviceId, err)
	}
	return nil
}

// DeleteService 删除服务行及其全部从属行，服务不存在时是无操作
func (s *ServiceLogic) DeleteService(orgId, serviceId string) error {
	dependents := []interface{}{
		&model.ServiceMetadata{},
		&model.ServiceGroup{},
		&model.ServiceEndpoint{},
		&model.ServiceTag{},
		&model.ServiceMedia{},
	}
	for _, dep := range dependents {
		if err := s.db.Where("org_id = ? AND service_id = ?", orgId, serviceId).Delete(dep).Error; err != nil {
			return fmt.Errorf("failed to delete service dependents %s/%s: %w", orgId, serviceId, err)
		}
	}
	if err := s.db.Where("org_id = ? AND service_id = ?", orgId, serviceId).Delete(&model.Service{}).Error; err != nil {
		return fmt.Errorf("failed to delete service %s/%s: %w", orgId, serviceId, err)
	}
	return nil
}

// CountByOrg 统计组织下的服务数
func (s *ServiceLogic) CountByOrg(orgId string) (int64, error) {
	var count int64
	if err := s.db.Model(&model.Service{}).Where("org_id = ?", orgId).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count services for %s: %w", orgId, err)
	}
	return count, nil
}

// GetTags 获取服务标签
func (s *ServiceLogic) GetTags(orgId, serviceId string) ([]model.ServiceTag, error) {
	var tags []model.ServiceTag
	if err := s.db.Where("org_id = ? AND service_id = ?", orgId, serviceId).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch service tags %s/%s: %w", orgId, serviceId, err)
	}
	return tags, nil
}

// GetServices 分页获取服务列表
func (s *ServiceLogic) GetServices(orgId string, curatedOnly bool, page, pageSize int) ([]model.Service, int64, error) {
	var services []model.Service
	var total int64

	query := s.db.Model(&model.Service{})
	if orgId != "" {
		query = query.Where("org_id = ?", orgId)
	}
	if curatedOnly {
		query = query.Where("is_curated = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("org_id ASC, service_id ASC").Find(&services).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}

	return services, total, nil
}

// SetCurated 设置服务的curation标记
func (s *ServiceLogic) SetCurated(orgId, serviceId string, curated bool) error {
	result := s.db.Model(&model.Service{}).
		Where("org_id = ? AND service_id = ?", orgId, serviceId).
		Update("is_curated", curated)
	if result.Error != nil {
		return fmt.Errorf("failed to update curation for %s/%s: %w", orgId, serviceId, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("service not found")
	}
	return nil
}
