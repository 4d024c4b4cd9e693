package event

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packBytes32 模拟链侧解析器对bytes32参数的归一化：右侧NUL填充后hex编码
func packBytes32(s string) string {
	var b [32]byte
	copy(b[:], s)
	return hexutil.Encode(b[:])
}

func registryRawEvent(t *testing.T, eventName string, args map[string]interface{}) *model.RawEvent {
	t.Helper()

	data, err := json.Marshal(args)
	require.NoError(t, err)
	return &model.RawEvent{
		BlockNum:  100,
		EventName: eventName,
		Data:      string(data),
		TxHash:    "0xabc",
		LogIndex:  0,
	}
}

func TestDecoder_OrganizationCreated(t *testing.T) {
	decoder := NewDecoder()

	raw := registryRawEvent(t, "OrganizationCreated", map[string]interface{}{
		"orgId":          packBytes32("snet"),
		"owner":          "0x1111111111111111111111111111111111111111",
		"orgMetadataURI": packBytes32("ipfs://QmOrgHash"),
	})

	domainEvent, err := decoder.Decode(raw)
	require.NoError(t, err)

	ev, ok := domainEvent.(*OrganizationCreated)
	require.True(t, ok)
	// bytes32标识符去掉NUL填充后是UTF-8字符串
	assert.Equal(t, "snet", ev.OrgId)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", ev.Owner)
	assert.Equal(t, "ipfs://QmOrgHash", ev.MetadataUri)
}

func TestDecoder_MissingIdIsDecodeError(t *testing.T) {
	decoder := NewDecoder()

	raw := registryRawEvent(t, "OrganizationCreated", map[string]interface{}{
		"owner": "0x1111111111111111111111111111111111111111",
	})

	_, err := decoder.Decode(raw)
	require.Error(t, err)
	var decodeError *DecodeError
	assert.ErrorAs(t, err, &decodeError)
}

func TestDecoder_EmptyIdIsDecodeError(t *testing.T) {
	decoder := NewDecoder()

	// 全NUL的bytes32修剪后为空串
	raw := registryRawEvent(t, "OrganizationDeleted", map[string]interface{}{
		"orgId": packBytes32(""),
	})

	_, err := decoder.Decode(raw)
	var decodeError *DecodeError
	assert.ErrorAs(t, err, &decodeError)
}

func TestDecoder_MissingOrgMetadataUriIsDecodeError(t *testing.T) {
	decoder := NewDecoder()

	// 缺少元数据URI必须在解码阶段拒绝，而不是留到投影阶段去拉取空URI
	for _, eventName := range []string{"OrganizationCreated", "OrganizationModified"} {
		raw := registryRawEvent(t, eventName, map[string]interface{}{
			"orgId": packBytes32("snet"),
			"owner": "0x1111111111111111111111111111111111111111",
		})

		_, err := decoder.Decode(raw)
		require.Error(t, err, eventName)
		var decodeError *DecodeError
		assert.ErrorAs(t, err, &decodeError, eventName)
	}
}

func TestDecoder_UnsupportedEventIsDecodeError(t *testing.T) {
	decoder := NewDecoder()

	raw := registryRawEvent(t, "SomethingElse", map[string]interface{}{})
	_, err := decoder.Decode(raw)
	var decodeError *DecodeError
	assert.ErrorAs(t, err, &decodeError)
}

func TestDecoder_ServiceCreated(t *testing.T) {
	decoder := NewDecoder()

	raw := registryRawEvent(t, "ServiceCreated", map[string]interface{}{
		"orgId":       packBytes32("snet"),
		"serviceId":   packBytes32("translation"),
		"metadataURI": packBytes32("ipfs://QmSvcHash"),
	})

	domainEvent, err := decoder.Decode(raw)
	require.NoError(t, err)

	ev, ok := domainEvent.(*ServiceCreated)
	require.True(t, ok)
	assert.Equal(t, "snet", ev.OrgId)
	assert.Equal(t, "translation", ev.ServiceId)
	assert.Equal(t, "ipfs://QmSvcHash", ev.MetadataUri)
}

func TestDecoder_ChannelOpen(t *testing.T) {
	decoder := NewDecoder()

	groupBytes := [32]byte{}
	for i := range groupBytes {
		groupBytes[i] = byte(i)
	}

	raw := &model.RawEvent{
		BlockNum:  200,
		EventName: "ChannelOpen",
		TxHash:    "0xdef",
		Data: fmt.Sprintf(`{
			"channelId": 23,
			"sender": "0x1111111111111111111111111111111111111111",
			"signer": "0x1111111111111111111111111111111111111111",
			"recipient": "0x2222222222222222222222222222222222222222",
			"groupId": %q,
			"amount": "1000000000000000000000",
			"nonce": 0,
			"expiration": 11000
		}`, hexutil.Encode(groupBytes[:])),
	}

	domainEvent, err := decoder.Decode(raw)
	require.NoError(t, err)

	ev, ok := domainEvent.(*ChannelOpen)
	require.True(t, ok)
	assert.Equal(t, int64(23), ev.ChannelId)
	// 超出int64的金额保持为十进制字符串
	assert.Equal(t, "1000000000000000000000", ev.Amount)
	assert.Equal(t, int64(11000), ev.Expiration)

	// bytes32分组标识的base64表示是投影的自然键，必须逐位稳定
	assert.Equal(t, base64.StdEncoding.EncodeToString(groupBytes[:]), ev.GroupId)

	again, err := decoder.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, ev.GroupId, again.(*ChannelOpen).GroupId)
}

func TestDecoder_ChannelOpenRejectsShortGroupId(t *testing.T) {
	decoder := NewDecoder()

	raw := registryRawEvent(t, "ChannelOpen", map[string]interface{}{
		"channelId":  1,
		"sender":     "0x1111111111111111111111111111111111111111",
		"recipient":  "0x2222222222222222222222222222222222222222",
		"groupId":    "0x0102",
		"amount":     "10",
		"nonce":      0,
		"expiration": 100,
	})

	_, err := decoder.Decode(raw)
	var decodeError *DecodeError
	assert.ErrorAs(t, err, &decodeError)
}

func TestDecoder_ChannelRefreshEvents(t *testing.T) {
	decoder := NewDecoder()

	for _, eventName := range []string{"ChannelClaim", "ChannelExtend", "ChannelAddFunds"} {
		raw := registryRawEvent(t, eventName, map[string]interface{}{"channelId": 42})
		domainEvent, err := decoder.Decode(raw)
		require.NoError(t, err, eventName)
		assert.Equal(t, eventName, domainEvent.EventName())
	}
}

func TestStripIpfsPrefix(t *testing.T) {
	assert.Equal(t, "QmHash", StripIpfsPrefix("ipfs://QmHash"))
	assert.Equal(t, "QmHash", StripIpfsPrefix("  ipfs://QmHash"))
	assert.Equal(t, "QmHash", StripIpfsPrefix("QmHash"))
}
