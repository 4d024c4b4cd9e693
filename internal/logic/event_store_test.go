package logic

import (
	"testing"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawEvent(blockNum int64, txHash string, logIndex int64) *model.RawEvent {
	return &model.RawEvent{
		BlockNum:  blockNum,
		EventName: "OrganizationCreated",
		Data:      `{"orgId":"0x6f7267"}`,
		TxHash:    txHash,
		LogIndex:  logIndex,
	}
}

func TestEventStore_InsertIdempotent(t *testing.T) {
	store := NewEventStore(newTestDB(t))

	created, err := store.InsertRawEvent(model.EventFamilyRegistry, rawEvent(100, "0xabc", 0))
	require.NoError(t, err)
	assert.True(t, created)

	// 同一条链上日志重复写入是无操作
	duplicate := rawEvent(100, "0xabc", 0)
	duplicate.Data = `{"orgId":"changed"}`
	created, err = store.InsertRawEvent(model.EventFamilyRegistry, duplicate)
	require.NoError(t, err)
	assert.False(t, created)

	events, _, err := store.GetEvents(model.EventFamilyRegistry, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, `{"orgId":"0x6f7267"}`, events[0].Data)

	// 同一交易的不同日志序号是不同事件
	created, err = store.InsertRawEvent(model.EventFamilyRegistry, rawEvent(100, "0xabc", 1))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestEventStore_FamiliesAreIsolated(t *testing.T) {
	store := NewEventStore(newTestDB(t))

	_, err := store.InsertRawEvent(model.EventFamilyRegistry, rawEvent(100, "0xabc", 0))
	require.NoError(t, err)

	// 另一个事件族写入相同坐标不冲突
	created, err := store.InsertRawEvent(model.EventFamilyMpe, rawEvent(100, "0xabc", 0))
	require.NoError(t, err)
	assert.True(t, created)

	count, err := store.CountUnprocessed(model.EventFamilyMpe)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestEventStore_ReadUnprocessedOrdering(t *testing.T) {
	store := NewEventStore(newTestDB(t))

	for _, blockNum := range []int64{5, 3, 4} {
		_, err := store.InsertRawEvent(model.EventFamilyRegistry, rawEvent(blockNum, "0xabc", blockNum))
		require.NoError(t, err)
	}

	events, err := store.ReadUnprocessed(model.EventFamilyRegistry, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(3), events[0].BlockNum)
	assert.Equal(t, int64(4), events[1].BlockNum)
	assert.Equal(t, int64(5), events[2].BlockNum)
}

func TestEventStore_MarkProcessed(t *testing.T) {
	store := NewEventStore(newTestDB(t))

	_, err := store.InsertRawEvent(model.EventFamilyRegistry, rawEvent(100, "0xabc", 0))
	require.NoError(t, err)

	events, err := store.ReadUnprocessed(model.EventFamilyRegistry, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, store.MarkProcessed(model.EventFamilyRegistry, events[0].Id, model.ErrorCodeReconcile, "metadata fetch failed"))

	remaining, err := store.ReadUnprocessed(model.EventFamilyRegistry, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	stored, _, err := store.GetEvents(model.EventFamilyRegistry, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Processed)
	assert.Equal(t, model.ErrorCodeReconcile, stored[0].ErrorCode)
	assert.Equal(t, "metadata fetch failed", stored[0].ErrorMsg)
}

func TestEventStore_MarkDispatched(t *testing.T) {
	store := NewEventStore(newTestDB(t))

	_, err := store.InsertRawEvent(model.EventFamilyRegistry, rawEvent(100, "0xabc", 0))
	require.NoError(t, err)

	events, err := store.ReadUndispatched(model.EventFamilyRegistry, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	// 全部订阅方成功时不写错误字段
	require.NoError(t, store.MarkDispatched(model.EventFamilyRegistry, events[0].Id, model.ErrorCodeNone, ""))

	remaining, err := store.ReadUndispatched(model.EventFamilyRegistry, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestEventStore_DispatchAndReconcileErrorsAreIndependent(t *testing.T) {
	store := NewEventStore(newTestDB(t))

	_, err := store.InsertRawEvent(model.EventFamilyRegistry, rawEvent(100, "0xabc", 0))
	require.NoError(t, err)
	events, err := store.ReadUnprocessed(model.EventFamilyRegistry, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	id := events[0].Id

	// 先记录推送失败，再成功消费，推送错误不能被清掉
	require.NoError(t, store.MarkDispatched(model.EventFamilyRegistry, id, model.ErrorCodeDispatch, "bad-listener: status 500"))
	require.NoError(t, store.MarkProcessed(model.EventFamilyRegistry, id, model.ErrorCodeNone, ""))

	stored, _, err := store.GetEvents(model.EventFamilyRegistry, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, model.ErrorCodeDispatch, stored[0].DispatchErrorCode)
	assert.Equal(t, "bad-listener: status 500", stored[0].DispatchErrorMsg)
	assert.Equal(t, model.ErrorCodeNone, stored[0].ErrorCode)
	assert.Empty(t, stored[0].ErrorMsg)

	// 反向：消费失败后再发生推送失败，消费错误同样保留
	_, err = store.InsertRawEvent(model.EventFamilyRegistry, rawEvent(101, "0xdef", 0))
	require.NoError(t, err)
	events, err = store.ReadUnprocessed(model.EventFamilyRegistry, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	id = events[0].Id

	require.NoError(t, store.MarkProcessed(model.EventFamilyRegistry, id, model.ErrorCodeReconcile, "metadata fetch failed"))
	require.NoError(t, store.MarkDispatched(model.EventFamilyRegistry, id, model.ErrorCodeDispatch, "bad-listener: status 500"))

	stored, _, err = store.GetEvents(model.EventFamilyRegistry, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	// GetEvents按block_num倒序，第一条是101
	assert.Equal(t, model.ErrorCodeReconcile, stored[0].ErrorCode)
	assert.Equal(t, "metadata fetch failed", stored[0].ErrorMsg)
	assert.Equal(t, model.ErrorCodeDispatch, stored[0].DispatchErrorCode)
}

func TestEventStore_RejectsInvalidEvent(t *testing.T) {
	store := NewEventStore(newTestDB(t))

	event := rawEvent(100, "0xabc", 0)
	event.EventName = ""
	_, err := store.InsertRawEvent(model.EventFamilyRegistry, event)
	assert.Error(t, err)

	event = rawEvent(0, "0xabc", 0)
	_, err = store.InsertRawEvent(model.EventFamilyRegistry, event)
	assert.Error(t, err)
}
