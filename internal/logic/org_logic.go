package logic

import (
	"errors"
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// OrgLogic 组织投影的业务逻辑
type OrgLogic struct {
	db *gorm.DB
}

// NewOrgLogic 创建组织业务逻辑
func NewOrgLogic(db *gorm.DB) *OrgLogic {
	return &OrgLogic{db: db}
}

// UpsertOrganization 按org_id整体覆盖组织投影，保留本地维护的is_curated标记
func (o *OrgLogic) UpsertOrganization(org *model.Organization) error {
	var existing model.Organization
	err := o.db.Where("org_id = ?", org.OrgId).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to fetch organization %s: %w", org.OrgId, err)
		}
		if err := o.db.Create(org).Error; err != nil {
			return fmt.Errorf("failed to create organization %s: %w", org.OrgId, err)
		}
		return nil
	}

	updates := map[string]interface{}{
		"organization_name": org.OrganizationName,
		"owner_address":     org.OwnerAddress,
		"org_metadata_uri":  org.OrgMetadataUri,
		"org_assets_url":    org.OrgAssetsUrl,
		"assets_hash":       org.AssetsHash,
		"description":       org.Description,
		"contacts":          org.Contacts,
	}
	if err := o.db.Model(&model.Organization{}).Where("org_id = ?", org.OrgId).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update organization %s: %w", org.OrgId, err)
	}
	return nil
}

// ReplaceOrgGroups 整体替换组织下的支付分组，分组不做增量对比
func (o *OrgLogic) ReplaceOrgGroups(orgId string, groups []model.OrgGroup) error {
	if err := o.db.Where("org_id = ?", orgId).Delete(&model.OrgGroup{}).Error; err != nil {
		return fmt.Errorf("failed to delete org groups for %s: %w", orgId, err)
	}
	if len(groups) == 0 {
		return nil
	}
	if err := o.db.Create(&groups).Error; err != nil {
		return fmt.Errorf("failed to insert org groups for %s: %w", orgId, err)
	}
	return nil
}

// DeleteOrganization 删除组织及其分组，组织不存在时是无操作
func (o *OrgLogic) DeleteOrganization(orgId string) error {
	if err := o.db.Where("org_id = ?", orgId).Delete(&model.OrgGroup{}).Error; err != nil {
		return fmt.Errorf("failed to delete org groups for %s: %w", orgId, err)
	}
	if err := o.db.Where("org_id = ?", orgId).Delete(&model.Organization{}).Error; err != nil {
		return fmt.Errorf("failed to delete organization %s: %w", orgId, err)
	}
	return nil
}

// GetOrganization 获取组织投影
func (o *OrgLogic) GetOrganization(orgId string) (*model.Organization, error) {
	var org model.Organization
	if err := o.db.Where("org_id = ?", orgId).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch organization %s: %w", orgId, err)
	}
	return &org, nil
}

// GetOrgGroups 获取组织下的支付分组
func (o *OrgLogic) GetOrgGroups(orgId string) ([]model.OrgGroup, error) {
	var groups []model.OrgGroup
	if err := o.db.Where("org_id = ?", orgId).Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch org groups for %s: %w", orgId, err)
	}
	return groups, nil
}

// GetOrganizations 分页获取组织列表
func (o *OrgLogic) GetOrganizations(curatedOnly bool, page, pageSize int) ([]model.Organization, int64, error) {
	var orgs []model.Organization
	var total int64

	query := o.db.Model(&model.Organization{})
	if curatedOnly {
		query = query.Where("is_curated = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("org_id ASC").Find(&orgs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}

	return orgs, total, nil
}

// SetCurated 设置组织的curation标记
func (o *OrgLogic) SetCurated(orgId string, curated bool) error {
	result := o.db.Model(&model.Organization{}).Where("org_id = ?", orgId).Update("is_curated", curated)
	if result.Error != nil {
		return fmt.Errorf("failed to update curation for %s: %w", orgId, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("organization not found")
	}
	return nil
}
