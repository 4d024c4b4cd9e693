package event

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_NotifiesAllListeners(t *testing.T) {
	db := newTestDB(t)
	store := logic.NewEventStore(db)
	subs := logic.NewSubscriptionLogic(db)

	var goodHits, badHits atomic.Int64
	var received Notification

	goodServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		goodHits.Add(1)
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer goodServer.Close()

	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		badHits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer badServer.Close()

	require.NoError(t, subs.CreateSubscription(&model.EventSubscription{
		EventName: "OrganizationCreated",
		Name:      "good-listener",
		Kind:      model.ListenerKindWebhook,
		Target:    goodServer.URL,
		Enabled:   true,
	}))
	require.NoError(t, subs.CreateSubscription(&model.EventSubscription{
		EventName: "OrganizationCreated",
		Name:      "bad-listener",
		Kind:      model.ListenerKindWebhook,
		Target:    badServer.URL,
		Enabled:   true,
	}))

	_, err := store.InsertRawEvent(model.EventFamilyRegistry, &model.RawEvent{
		BlockNum:  100,
		EventName: "OrganizationCreated",
		Data:      `{"orgId":"snet"}`,
		TxHash:    "0xabc",
		LogIndex:  0,
	})
	require.NoError(t, err)

	dispatcher := NewDispatcher(store, subs, 10)
	require.NoError(t, dispatcher.Run(context.Background(), model.EventFamilyRegistry))

	// 两个订阅方都被调用，单个失败不影响其他订阅方
	assert.Equal(t, int64(1), goodHits.Load())
	assert.Equal(t, int64(1), badHits.Load())

	assert.Equal(t, "OrganizationCreated", received.EventName)
	assert.Equal(t, int64(100), received.BlockNumber)
	assert.Equal(t, "0xabc", received.TxHash)

	// 事件标记为已推送，失败的订阅方记录在错误字段里
	events, _, err := store.GetEvents(model.EventFamilyRegistry, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Dispatched)
	assert.Equal(t, model.ErrorCodeDispatch, events[0].DispatchErrorCode)
	assert.Contains(t, events[0].DispatchErrorMsg, "bad-listener")
	assert.NotContains(t, events[0].DispatchErrorMsg, "good-listener")
	// 消费阶段的错误字段不受推送结果影响
	assert.Equal(t, model.ErrorCodeNone, events[0].ErrorCode)

	// 已推送的事件不会重投
	require.NoError(t, dispatcher.Run(context.Background(), model.EventFamilyRegistry))
	assert.Equal(t, int64(1), goodHits.Load())
	assert.Equal(t, int64(1), badHits.Load())
}

func TestDispatcher_NoListenersStillMarksDispatched(t *testing.T) {
	db := newTestDB(t)
	store := logic.NewEventStore(db)
	subs := logic.NewSubscriptionLogic(db)

	_, err := store.InsertRawEvent(model.EventFamilyRegistry, &model.RawEvent{
		BlockNum:  100,
		EventName: "OrganizationCreated",
		Data:      `{"orgId":"snet"}`,
		TxHash:    "0xabc",
		LogIndex:  0,
	})
	require.NoError(t, err)

	dispatcher := NewDispatcher(store, subs, 10)
	require.NoError(t, dispatcher.Run(context.Background(), model.EventFamilyRegistry))

	remaining, err := store.ReadUndispatched(model.EventFamilyRegistry, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDispatcher_DisabledListenerIsSkipped(t *testing.T) {
	db := newTestDB(t)
	store := logic.NewEventStore(db)
	subs := logic.NewSubscriptionLogic(db)

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, subs.CreateSubscription(&model.EventSubscription{
		EventName: "OrganizationCreated",
		Name:      "disabled-listener",
		Kind:      model.ListenerKindWebhook,
		Target:    server.URL,
		Enabled:   true,
	}))
	require.NoError(t, db.Model(&model.EventSubscription{}).
		Where("name = ?", "disabled-listener").Update("enabled", false).Error)

	_, err := store.InsertRawEvent(model.EventFamilyRegistry, &model.RawEvent{
		BlockNum:  100,
		EventName: "OrganizationCreated",
		Data:      `{"orgId":"snet"}`,
		TxHash:    "0xabc",
		LogIndex:  0,
	})
	require.NoError(t, err)

	dispatcher := NewDispatcher(store, subs, 10)
	require.NoError(t, dispatcher.Run(context.Background(), model.EventFamilyRegistry))

	assert.Equal(t, int64(0), hits.Load())
}
