package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// Reconciler 消费暂存的原始事件并把投影表推到与链一致。
// 每条事件在独立事务中处理，单条失败不阻塞后续事件。
type Reconciler struct {
	db       *gorm.DB
	store    *logic.EventStore
	decoder  *Decoder
	orgs     *OrgProcessor
	services *ServiceProcessor
	channels *ChannelProcessor
	limit    int
}

// NewReconciler 创建事件消费器
func NewReconciler(db *gorm.DB, orgs *OrgProcessor, services *ServiceProcessor, channels *ChannelProcessor, limit int) *Reconciler {
	if limit <= 0 {
		limit = 100
	}
	return &Reconciler{
		db:       db,
		store:    logic.NewEventStore(db),
		decoder:  NewDecoder(),
		orgs:     orgs,
		services: services,
		channels: channels,
		limit:    limit,
	}
}

// Run 按区块号升序消费一个事件族的未处理事件
func (r *Reconciler) Run(ctx context.Context, family model.EventFamily) error {
	events, err := r.store.ReadUnprocessed(family, r.limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	logger.Info("Reconciling %d %s events", len(events), family)

	for i := range events {
		raw := &events[i]
		if err := ctx.Err(); err != nil {
			return err
		}

		domainEvent, err := r.decoder.Decode(raw)
		if err != nil {
			var decodeError *DecodeError
			if errors.As(err, &decodeError) {
				// 坏事件标记后跳过，不阻塞后续事件
				logger.Warn("Skipping undecodable event %d (%s at block %d): %v",
					raw.Id, raw.EventName, raw.BlockNum, err)
				if markErr := r.store.MarkProcessed(family, raw.Id, model.ErrorCodeDecode, err.Error()); markErr != nil {
					return markErr
				}
				continue
			}
			return err
		}

		err = r.db.Transaction(func(tx *gorm.DB) error {
			return r.apply(ctx, tx, domainEvent)
		})
		if err != nil {
			logger.Error("Failed to reconcile event %d (%s at block %d): %v",
				raw.Id, raw.EventName, raw.BlockNum, err)
			if markErr := r.store.MarkProcessed(family, raw.Id, model.ErrorCodeReconcile, err.Error()); markErr != nil {
				return markErr
			}
			continue
		}

		if err := r.store.MarkProcessed(family, raw.Id, model.ErrorCodeNone, ""); err != nil {
			return err
		}
	}
	return nil
}

// apply 在事务内把一条领域事件落到投影表
func (r *Reconciler) apply(ctx context.Context, tx *gorm.DB, domainEvent DomainEvent) error {
	switch ev := domainEvent.(type) {
	case *OrganizationCreated:
		return r.orgs.ProcessUpsert(ctx, tx, ev.OrgId, ev.Owner, ev.MetadataUri)
	case *OrganizationModified:
		return r.orgs.ProcessUpsert(ctx, tx, ev.OrgId, ev.Owner, ev.MetadataUri)
	case *OrganizationDeleted:
		return r.orgs.ProcessDelete(tx, ev.OrgId)
	case *ServiceCreated:
		return r.services.ProcessUpsert(ctx, tx, ev.OrgId, ev.ServiceId, ev.MetadataUri)
	case *ServiceMetadataModified:
		return r.services.ProcessUpsert(ctx, tx, ev.OrgId, ev.ServiceId, ev.MetadataUri)
	case *ServiceDeleted:
		return r.services.ProcessDelete(tx, ev.OrgId, ev.ServiceId)
	case *ChannelOpen:
		return r.channels.ProcessOpen(tx, ev)
	case *ChannelClaim:
		return r.channels.ProcessRefresh(ctx, tx, ev.ChannelId)
	case *ChannelExtend:
		return r.channels.ProcessRefresh(ctx, tx, ev.ChannelId)
	case *ChannelAddFunds:
		return r.channels.ProcessRefresh(ctx, tx, ev.ChannelId)
	}
	return fmt.Errorf("no handler for event %s", domainEvent.EventName())
}
