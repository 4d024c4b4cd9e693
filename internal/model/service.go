package model

import (
	"time"
)

// Service 链上服务注册表的投影
type Service struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrgId     string `json:"org_id" gorm:"uniqueIndex:uk_service_org_service;not null"`
	ServiceId string `json:"service_id" gorm:"uniqueIndex:uk_service_org_service;not null"`
	HashUri   string `json:"hash_uri"` // 服务元数据的内容寻址哈希
	IsCurated bool   `json:"is_curated" gorm:"default:false"`
}

// TableName 自定义表名
func (Service) TableName() string {
	return "service"
}

// ServiceMetadata 服务的链下元数据快照，与Service一对一
type ServiceMetadata struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrgId            string `json:"org_id" gorm:"index;not null"`
	ServiceId        string `json:"service_id" gorm:"not null"`
	DisplayName      string `json:"display_name"`
	Description      string `json:"description" gorm:"type:text"`
	ShortDescription string `json:"short_description"`
	Url              string `json:"url"`
	Encoding         string `json:"encoding"`
	Type             string `json:"type"`
	MpeAddress       string `json:"mpe_address"`
	ModelHash        string `json:"model_hash"`
	AssetsUrl        string `json:"assets_url" gorm:"type:text"`     // JSON: 资源类型 -> URL
	AssetsHash       string `json:"assets_hash" gorm:"type:text"`    // JSON: 资源类型 -> 内容哈希
	ServiceRating    string `json:"service_rating" gorm:"type:text"` // JSON: {rating, total_users_rated}
	Contributors     string `json:"contributors" gorm:"type:text"`   // JSON数组
}

// TableName 自定义表名
func (ServiceMetadata) TableName() string {
	return "service_metadata"
}

// ServiceGroup 服务下的支付分组
type ServiceGroup struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrgId     string `json:"org_id" gorm:"index;not null"`
	ServiceId string `json:"service_id" gorm:"not null"`
	GroupId   string `json:"group_id" gorm:"not null"` // 链上bytes32的base64表示
	GroupName string `json:"group_name"`
	Pricing   string `json:"pricing" gorm:"type:text"` // JSON
}

// TableName 自定义表名
func (ServiceGroup) TableName() string {
	return "service_group"
}

// ServiceEndpoint 分组下的服务端点，is_available由外部健康检查更新
type ServiceEndpoint struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrgId       string    `json:"org_id" gorm:"index;not null"`
	ServiceId   string    `json:"service_id" gorm:"not null"`
	GroupId     string    `json:"group_id" gorm:"not null"`
	Endpoint    string    `json:"endpoint" gorm:"not null"`
	IsAvailable bool      `json:"is_available" gorm:"default:true"`
	LastCheckAt time.Time `json:"last_check_at"`
}

// TableName 自定义表名
func (ServiceEndpoint) TableName() string {
	return "service_endpoint"
}

// ServiceTag 服务标签，(org_id, service_id, tag_name) 唯一
type ServiceTag struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrgId     string `json:"org_id" gorm:"uniqueIndex:uk_service_tag;not null"`
	ServiceId string `json:"service_id" gorm:"uniqueIndex:uk_service_tag;not null"`
	TagName   string `json:"tag_name" gorm:"uniqueIndex:uk_service_tag;not null"`
}

// TableName 自定义表名
func (ServiceTag) TableName() string {
	return "service_tag"
}

// ServiceMedia 服务媒体资源，按资源类型替换
type ServiceMedia struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrgId     string `json:"org_id" gorm:"uniqueIndex:uk_service_media;not null"`
	ServiceId string `json:"service_id" gorm:"uniqueIndex:uk_service_media;not null"`
	AssetType string `json:"asset_type" gorm:"uniqueIndex:uk_service_media;not null"`
	Url       string `json:"url"`
	Order     int    `json:"order" gorm:"column:media_order"`
	FileType  string `json:"file_type"`
	AltText   string `json:"alt_text"`
}

// TableName 自定义表名
func (ServiceMedia) TableName() string {
	return "service_media"
}
