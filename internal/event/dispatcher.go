package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
)

// Notification 推送给订阅方的事件通知
type Notification struct {
	EventName   string          `json:"event_name"`
	BlockNumber int64           `json:"block_number"`
	TxHash      string          `json:"tx_hash"`
	LogIndex    int64           `json:"log_index"`
	Data        json.RawMessage `json:"data"`
}

// Dispatcher 把已落库的事件推送给注册的订阅方。
// 订阅方之间互不影响，单个订阅方失败只记录不重投。
type Dispatcher struct {
	store      *logic.EventStore
	subs       *logic.SubscriptionLogic
	httpClient *http.Client
	limit      int
}

// NewDispatcher 创建事件推送器
func NewDispatcher(store *logic.EventStore, subs *logic.SubscriptionLogic, limit int) *Dispatcher {
	if limit <= 0 {
		limit = 100
	}
	return &Dispatcher{
		store: store,
		subs:  subs,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limit: limit,
	}
}

// Run 按区块号升序推送一个事件族的未通知事件
func (d *Dispatcher) Run(ctx context.Context, family model.EventFamily) error {
	events, err := d.store.ReadUndispatched(family, d.limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	logger.Info("Dispatching %d %s events", len(events), family)

	for i := range events {
		raw := &events[i]
		if err := ctx.Err(); err != nil {
			return err
		}

		listeners, err := d.subs.GetListeners(raw.EventName)
		if err != nil {
			return err
		}

		failures := d.notifyAll(ctx, raw, listeners)

		errorCode := model.ErrorCodeNone
		errorMsg := ""
		if len(failures) > 0 {
			errorCode = model.ErrorCodeDispatch
			errorMsg = formatFailures(failures)
			logger.Warn("Event %d (%s) dispatch finished with failures: %s", raw.Id, raw.EventName, errorMsg)
		}
		if err := d.store.MarkDispatched(family, raw.Id, errorCode, errorMsg); err != nil {
			return err
		}
	}
	return nil
}

// notifyAll 并发通知全部订阅方，返回按订阅方名索引的失败原因
func (d *Dispatcher) notifyAll(ctx context.Context, raw *model.RawEvent, listeners []model.EventSubscription) map[string]error {
	failures := make(map[string]error)
	if len(listeners) == 0 {
		return failures
	}

	// 临时协程池，大小等于订阅方数量
	tempPool, err := ants.NewPool(len(listeners))
	if err != nil {
		for _, listener := range listeners {
			failures[listener.Name] = fmt.Errorf("failed to create dispatch pool: %w", err)
		}
		return failures
	}
	defer tempPool.Release()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := range listeners {
		listener := listeners[i]
		wg.Add(1)
		submitErr := tempPool.Submit(func() {
			defer wg.Done()
			if err := d.notify(ctx, raw, &listener); err != nil {
				mu.Lock()
				failures[listener.Name] = err
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			failures[listener.Name] = submitErr
			mu.Unlock()
		}
	}
	wg.Wait()
	return failures
}

// notify 通知单个订阅方
func (d *Dispatcher) notify(ctx context.Context, raw *model.RawEvent, listener *model.EventSubscription) error {
	payload, err := json.Marshal(Notification{
		EventName:   raw.EventName,
		BlockNumber: raw.BlockNum,
		TxHash:      raw.TxHash,
		LogIndex:    raw.LogIndex,
		Data:        json.RawMessage(raw.Data),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	switch listener.Kind {
	case model.ListenerKindWebhook, model.ListenerKindFunction:
		return d.post(ctx, listener.Target, payload)
	}
	return fmt.Errorf("unsupported listener kind %q", listener.Kind)
}

// post 投递通知，非2xx响应视为失败
func (d *Dispatcher) post(ctx context.Context, target string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", target, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification to %s: %w", target, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("listener %s responded with status %d", target, resp.StatusCode)
	}
	return nil
}

// formatFailures 把失败原因汇总成稳定有序的错误消息
func formatFailures(failures map[string]error) string {
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, failures[name]))
	}
	return strings.Join(parts, "; ")
}
