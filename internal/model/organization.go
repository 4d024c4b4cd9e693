package model

import (
	"time"
)

// Organization 链上组织的投影
type Organization struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrgId            string `json:"org_id" gorm:"uniqueIndex;not null"`
	OrganizationName string `json:"organization_name"`
	OwnerAddress     string `json:"owner_address"`
	OrgMetadataUri   string `json:"org_metadata_uri"`
	OrgAssetsUrl     string `json:"org_assets_url" gorm:"type:text"` // JSON: 资源类型 -> URL
	AssetsHash       string `json:"assets_hash" gorm:"type:text"`    // JSON: 资源类型 -> 内容哈希
	Description      string `json:"description" gorm:"type:text"`    // JSON
	Contacts         string `json:"contacts" gorm:"type:text"`       // JSON数组
	IsCurated        bool   `json:"is_curated" gorm:"default:false"`
}

// TableName 自定义表名
func (Organization) TableName() string {
	return "organization"
}

// OrgGroup 组织下的支付分组，每次组织更新时整体替换
type OrgGroup struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrgId     string `json:"org_id" gorm:"index;not null"`
	GroupId   string `json:"group_id" gorm:"not null"` // 链上bytes32的base64表示
	GroupName string `json:"group_name"`
	Payment   string `json:"payment" gorm:"type:text"` // JSON: 支付地址与通道存储配置
}

// TableName 自定义表名
func (OrgGroup) TableName() string {
	return "org_group"
}
