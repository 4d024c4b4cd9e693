package event

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DomainEvent 强类型的领域事件，解码器按事件名产出对应的变体
type DomainEvent interface {
	EventName() string
}

// OrganizationCreated 组织创建事件
type OrganizationCreated struct {
	OrgId       string
	Owner       string
	MetadataUri string
}

func (OrganizationCreated) EventName() string { return "OrganizationCreated" }

// OrganizationModified 组织变更事件
type OrganizationModified struct {
	OrgId       string
	Owner       string
	MetadataUri string
}

func (OrganizationModified) EventName() string { return "OrganizationModified" }

// OrganizationDeleted 组织删除事件
type OrganizationDeleted struct {
	OrgId string
}

func (OrganizationDeleted) EventName() string { return "OrganizationDeleted" }

// ServiceCreated 服务创建事件
type ServiceCreated struct {
	OrgId       string
	ServiceId   string
	MetadataUri string
}

func (ServiceCreated) EventName() string { return "ServiceCreated" }

// ServiceMetadataModified 服务元数据变更事件
type ServiceMetadataModified struct {
	OrgId       string
	ServiceId   string
	MetadataUri string
}

func (ServiceMetadataModified) EventName() string { return "ServiceMetadataModified" }

// ServiceDeleted 服务删除事件
type ServiceDeleted struct {
	OrgId     string
	ServiceId string
}

func (ServiceDeleted) EventName() string { return "ServiceDeleted" }

// ChannelOpen 支付通道打开事件
type ChannelOpen struct {
	ChannelId  int64
	Sender     string
	Signer     string
	Recipient  string
	GroupId    string // 链上bytes32的base64表示
	Amount     string // cogs，十进制字符串
	Nonce      int64
	Expiration int64
}

func (ChannelOpen) EventName() string { return "ChannelOpen" }

// ChannelClaim 通道提款事件，投影更新依赖链上全量重读
type ChannelClaim struct {
	ChannelId int64
}

func (ChannelClaim) EventName() string { return "ChannelClaim" }

// ChannelExtend 通道延期事件
type ChannelExtend struct {
	ChannelId int64
}

func (ChannelExtend) EventName() string { return "ChannelExtend" }

// ChannelAddFunds 通道追加资金事件
type ChannelAddFunds struct {
	ChannelId int64
}

func (ChannelAddFunds) EventName() string { return "ChannelAddFunds" }

// DecodeError 事件参数缺失或格式错误
type DecodeError struct {
	Event  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %s", e.Event, e.Reason)
}

func decodeErr(event, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Event: event, Reason: fmt.Sprintf(format, args...)}
}

// Decoder 无副作用的事件解码器，将原始事件payload转换为领域事件
type Decoder struct{}

// NewDecoder 创建解码器
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode 解码一条原始事件
func (d *Decoder) Decode(raw *model.RawEvent) (DomainEvent, error) {
	args, err := d.payload(raw)
	if err != nil {
		return nil, err
	}

	switch raw.EventName {
	case "OrganizationCreated":
		ev := &OrganizationCreated{}
		if ev.OrgId, err = idArg(raw.EventName, args, "orgId"); err != nil {
			return nil, err
		}
		ev.Owner = optionalStringArg(args, "owner")
		if ev.MetadataUri = uriArg(args, "orgMetadataURI", "metadataURI"); ev.MetadataUri == "" {
			return nil, decodeErr(raw.EventName, "missing orgMetadataURI")
		}
		return ev, nil

	case "OrganizationModified":
		ev := &OrganizationModified{}
		if ev.OrgId, err = idArg(raw.EventName, args, "orgId"); err != nil {
			return nil, err
		}
		ev.Owner = optionalStringArg(args, "owner")
		if ev.MetadataUri = uriArg(args, "orgMetadataURI", "metadataURI"); ev.MetadataUri == "" {
			return nil, decodeErr(raw.EventName, "missing orgMetadataURI")
		}
		return ev, nil

	case "OrganizationDeleted":
		ev := &OrganizationDeleted{}
		if ev.OrgId, err = idArg(raw.EventName, args, "orgId"); err != nil {
			return nil, err
		}
		return ev, nil

	case "ServiceCreated", "ServiceMetadataModified":
		orgId, err := idArg(raw.EventName, args, "orgId")
		if err != nil {
			return nil, err
		}
		serviceId, err := idArg(raw.EventName, args, "serviceId")
		if err != nil {
			return nil, err
		}
		uri := uriArg(args, "metadataURI", "metadataUri")
		if uri == "" {
			return nil, decodeErr(raw.EventName, "missing metadataURI")
		}
		if raw.EventName == "ServiceCreated" {
			return &ServiceCreated{OrgId: orgId, ServiceId: serviceId, MetadataUri: uri}, nil
		}
		return &ServiceMetadataModified{OrgId: orgId, ServiceId: serviceId, MetadataUri: uri}, nil

	case "ServiceDeleted":
		orgId, err := idArg(raw.EventName, args, "orgId")
		if err != nil {
			return nil, err
		}
		serviceId, err := idArg(raw.EventName, args, "serviceId")
		if err != nil {
			return nil, err
		}
		return &ServiceDeleted{OrgId: orgId, ServiceId: serviceId}, nil

	case "ChannelOpen":
		ev := &ChannelOpen{}
		if ev.ChannelId, err = intArg(raw.EventName, args, "channelId"); err != nil {
			return nil, err
		}
		if ev.Sender, err = addressArg(raw.EventName, args, "sender"); err != nil {
			return nil, err
		}
		ev.Signer = optionalStringArg(args, "signer")
		if ev.Recipient, err = addressArg(raw.EventName, args, "recipient"); err != nil {
			return nil, err
		}
		if ev.GroupId, err = groupIdArg(raw.EventName, args, "groupId"); err != nil {
			return nil, err
		}
		if ev.Amount, err = amountArg(raw.EventName, args, "amount"); err != nil {
			return nil, err
		}
		if ev.Nonce, err = intArg(raw.EventName, args, "nonce"); err != nil {
			return nil, err
		}
		if ev.Expiration, err = intArg(raw.EventName, args, "expiration"); err != nil {
			return nil, err
		}
		return ev, nil

	case "ChannelClaim":
		id, err := intArg(raw.EventName, args, "channelId")
		if err != nil {
			return nil, err
		}
		return &ChannelClaim{ChannelId: id}, nil

	case "ChannelExtend":
		id, err := intArg(raw.EventName, args, "channelId")
		if err != nil {
			return nil, err
		}
		return &ChannelExtend{ChannelId: id}, nil

	case "ChannelAddFunds":
		id, err := intArg(raw.EventName, args, "channelId")
		if err != nil {
			return nil, err
		}
		return &ChannelAddFunds{ChannelId: id}, nil
	}

	return nil, decodeErr(raw.EventName, "unsupported event")
}

// payload 反序列化事件参数
func (d *Decoder) payload(raw *model.RawEvent) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(raw.Data))
	dec.UseNumber()
	var args map[string]interface{}
	if err := dec.Decode(&args); err != nil {
		return nil, decodeErr(raw.EventName, "invalid payload: %v", err)
	}
	return args, nil
}

// StripIpfsPrefix 去掉元数据URI的ipfs://前缀，返回内容寻址哈希
func StripIpfsPrefix(uri string) string {
	return strings.TrimPrefix(strings.TrimSpace(uri), "ipfs://")
}

// argBytes 将归一化后的参数值还原为原始字节。
// 链侧解析统一将bytes/bytes32编码为0x十六进制字符串。
func argBytes(v interface{}) ([]byte, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return []byte(s), true
}

// idArg 解码bytes32打包的标识符：去掉尾部NUL填充后作为UTF-8字符串
func idArg(event string, args map[string]interface{}, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", decodeErr(event, "missing %s", name)
	}
	b, ok := argBytes(v)
	if !ok {
		return "", decodeErr(event, "malformed %s", name)
	}
	id := string(bytes.TrimRight(b, "\x00"))
	if id == "" {
		return "", decodeErr(event, "empty %s", name)
	}
	return id, nil
}

// uriArg 解码元数据URI参数，尝试多个候选参数名
func uriArg(args map[string]interface{}, names ...string) string {
	for _, name := range names {
		v, ok := args[name]
		if !ok {
			continue
		}
		if b, ok := argBytes(v); ok {
			return string(bytes.TrimRight(b, "\x00"))
		}
	}
	return ""
}

// groupIdArg 将链上bytes32分组标识转换为稳定的base64表示。
// 同一组32字节无论解码多少次都得到同一个字符串，该字符串即投影的自然键。
func groupIdArg(event string, args map[string]interface{}, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", decodeErr(event, "missing %s", name)
	}
	b, ok := argBytes(v)
	if !ok || len(b) != 32 {
		return "", decodeErr(event, "malformed %s", name)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// addressArg 解码地址参数
func addressArg(event string, args map[string]interface{}, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", decodeErr(event, "missing %s", name)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", decodeErr(event, "malformed %s", name)
	}
	return s, nil
}

// optionalStringArg 解码可选的字符串参数
func optionalStringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// intArg 解码整型参数
func intArg(event string, args map[string]interface{}, name string) (int64, error) {
	v, ok := args[name]
	if !ok {
		return 0, decodeErr(event, "missing %s", name)
	}
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, decodeErr(event, "malformed %s: %v", name, err)
		}
		return n, nil
	case string:
		n, ok := new(big.Int).SetString(val, 10)
		if !ok || !n.IsInt64() {
			return 0, decodeErr(event, "malformed %s", name)
		}
		return n.Int64(), nil
	case float64:
		return int64(val), nil
	}
	return 0, decodeErr(event, "malformed %s", name)
}

// amountArg 解码大整数金额参数为十进制字符串
func amountArg(event string, args map[string]interface{}, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", decodeErr(event, "missing %s", name)
	}
	var s string
	switch val := v.(type) {
	case json.Number:
		s = val.String()
	case string:
		s = val
	default:
		return "", decodeErr(event, "malformed %s", name)
	}
	if _, ok := new(big.Int).SetString(s, 10); !ok {
		return "", decodeErr(event, "malformed %s", name)
	}
	return s, nil
}
