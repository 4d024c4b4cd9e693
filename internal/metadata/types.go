package metadata

import (
	"encoding/json"
)

// OrgMetadata 组织的链下元数据文档
type OrgMetadata struct {
	OrgName     string            `json:"org_name"`
	OrgId       string            `json:"org_id"`
	OrgType     string            `json:"org_type"`
	Description OrgDescription    `json:"description"`
	Assets      map[string]string `json:"assets"` // 资源类型 -> 内容哈希
	Contacts    json.RawMessage   `json:"contacts"`
	Groups      []OrgGroupDoc     `json:"groups"`
}

// OrgDescription 组织描述
type OrgDescription struct {
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	Url              string `json:"url"`
}

// OrgGroupDoc 组织元数据中的支付分组
type OrgGroupDoc struct {
	GroupName string          `json:"group_name"`
	GroupId   string          `json:"group_id"` // 链上bytes32的base64表示
	Payment   json.RawMessage `json:"payment"`  // 支付地址与通道存储配置
}

// ServiceMetadataDoc 服务的链下元数据文档
type ServiceMetadataDoc struct {
	Version            int                `json:"version"`
	DisplayName        string             `json:"display_name"`
	Encoding           string             `json:"encoding"`
	ServiceType        string             `json:"service_type"`
	ModelIpfsHash      string             `json:"model_ipfs_hash"`
	MpeAddress         string             `json:"mpe_address"`
	Groups             []ServiceGroupDoc  `json:"groups"`
	Assets             map[string]string  `json:"assets"` // 资源类型 -> 内容哈希
	Media              []ServiceMediaDoc  `json:"media"`
	Tags               []string           `json:"tags"`
	ServiceDescription ServiceDescription `json:"service_description"`
	Contributors       json.RawMessage    `json:"contributors"`
}

// ServiceGroupDoc 服务元数据中的支付分组
type ServiceGroupDoc struct {
	GroupName string          `json:"group_name"`
	GroupId   string          `json:"group_id"` // 链上bytes32的base64表示
	Pricing   json.RawMessage `json:"pricing"`
	Endpoints []string        `json:"endpoints"`
}

// ServiceMediaDoc 服务元数据中的媒体资源
type ServiceMediaDoc struct {
	Order     int    `json:"order"`
	Url       string `json:"url"`
	FileType  string `json:"file_type"`
	AssetType string `json:"asset_type"`
	AltText   string `json:"alt_text"`
}

// ServiceDescription 服务描述
type ServiceDescription struct {
	Url              string `json:"url"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
}
